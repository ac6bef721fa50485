// Package coretest provides in-memory repository implementations for unit
// tests. They honor the same contracts as the gorm repositories: keyset
// listing, unique pair indexes, coded not-found errors.
package coretest

import (
	"context"
	"sort"
	"sync"
	"time"

	"spokd/internal/core"
)

type Accounts struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*core.Account
}

func NewAccounts() *Accounts {
	return &Accounts{byID: map[int64]*core.Account{}}
}

func (a *Accounts) Add(account core.Account) *core.Account {
	a.mu.Lock()
	defer a.mu.Unlock()

	if account.ID == 0 {
		a.nextID++
		account.ID = a.nextID
	} else if account.ID > a.nextID {
		a.nextID = account.ID
	}
	if account.Status == "" {
		account.Status = core.AccountActive
	}
	a.byID[account.ID] = &account
	return a.byID[account.ID]
}

func (a *Accounts) Get(_ context.Context, id int64) (*core.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	account, ok := a.byID[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	copied := *account
	return &copied, nil
}

func (a *Accounts) GetByPhone(_ context.Context, phone string) (*core.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, account := range a.byID {
		if account.Phone == phone {
			copied := *account
			return &copied, nil
		}
	}
	return nil, core.ErrAccountNotFound
}

func (a *Accounts) GetByNickname(_ context.Context, nickname string) (*core.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, account := range a.byID {
		if account.Nickname == nickname && account.Status == core.AccountActive {
			copied := *account
			return &copied, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (a *Accounts) Create(_ context.Context, account *core.Account) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextID++
	account.ID = a.nextID
	copied := *account
	a.byID[account.ID] = &copied
	return nil
}

func (a *Accounts) Update(_ context.Context, account *core.Account) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	copied := *account
	a.byID[account.ID] = &copied
	return nil
}

func (a *Accounts) IDsByPhones(_ context.Context, phones []string) ([]int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var ids []int64
	for _, phone := range phones {
		for _, account := range a.byID {
			if account.Phone == phone {
				ids = append(ids, account.ID)
			}
		}
	}
	return ids, nil
}

func (a *Accounts) SearchNicknames(_ context.Context, prefix string, limit int) ([]core.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var found []core.Account
	for _, account := range a.byID {
		if len(account.Nickname) >= len(prefix) && account.Nickname[:len(prefix)] == prefix {
			found = append(found, *account)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	if len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

type Spoks struct {
	mu        sync.Mutex
	nextID    int64
	spoks     map[int64]*core.Spok
	instances map[int64]*core.SpokInstance
}

func NewSpoks() *Spoks {
	return &Spoks{spoks: map[int64]*core.Spok{}, instances: map[int64]*core.SpokInstance{}}
}

func (s *Spoks) Get(_ context.Context, id int64) (*core.Spok, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	spok, ok := s.spoks[id]
	if !ok {
		return nil, core.ErrSpokNotFound
	}
	copied := *spok
	return &copied, nil
}

func (s *Spoks) Create(_ context.Context, spok *core.Spok, first *core.SpokInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	spok.ID = s.nextID
	copied := *spok
	s.spoks[spok.ID] = &copied

	first.SpokID = spok.ID
	s.nextID++
	first.ID = s.nextID
	instCopy := *first
	s.instances[first.ID] = &instCopy
	return nil
}

func (s *Spoks) Instance(_ context.Context, id int64) (*core.SpokInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	instance, ok := s.instances[id]
	if !ok {
		return nil, core.ErrSpokNotFound
	}
	copied := *instance
	return &copied, nil
}

func (s *Spoks) InstanceOf(_ context.Context, spokID, spokerID int64) (*core.SpokInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, instance := range s.instances {
		if instance.SpokID == spokID && instance.SpokerID == spokerID {
			copied := *instance
			return &copied, nil
		}
	}
	return nil, core.ErrSpokNotFound
}

func (s *Spoks) CreateInstance(_ context.Context, instance *core.SpokInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.instances {
		if existing.SpokID == instance.SpokID && existing.SpokerID == instance.SpokerID {
			return core.ErrAlreadyRespoked
		}
	}

	s.nextID++
	instance.ID = s.nextID
	copied := *instance
	s.instances[instance.ID] = &copied
	return nil
}

func (s *Spoks) ClaimInstance(_ context.Context, id int64, claim core.InstanceClaim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	instance, ok := s.instances[id]
	if !ok || instance.State != core.InstancePending {
		return core.ErrAlreadyRespoked
	}
	instance.State = core.InstanceRespoked
	instance.Text = claim.Text
	instance.Visibility = claim.Visibility
	instance.Geo = claim.Geo
	instance.RespokedAt = claim.RespokedAt
	return nil
}

func (s *Spoks) UpdateInstanceState(_ context.Context, id int64, state core.InstanceState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	instance, ok := s.instances[id]
	if !ok {
		return core.ErrSpokNotFound
	}
	instance.State = state
	return nil
}

func (s *Spoks) DisableInstances(_ context.Context, spokID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, instance := range s.instances {
		if instance.SpokID != spokID {
			continue
		}
		if instance.State == core.InstancePending || instance.State == core.InstanceRespoked {
			instance.State = core.InstanceDisabled
		}
	}
	return nil
}

func (s *Spoks) SetDisabled(_ context.Context, spokID int64, disabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spok, ok := s.spoks[spokID]
	if !ok {
		return core.ErrSpokNotFound
	}
	spok.Disabled = disabled
	return nil
}

func (s *Spoks) BumpCounters(_ context.Context, spokID int64, d core.CounterDeltas) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	spok, ok := s.spoks[spokID]
	if !ok {
		return core.ErrSpokNotFound
	}
	spok.NbSpoked += d.Spoked
	spok.NbScoped += d.Scoped
	spok.NbComments += d.Comments
	spok.Distance += d.Distance
	return nil
}

func (s *Spoks) Stack(_ context.Context, userID int64, page core.Keyset, limit int) ([]core.SpokInstance, error) {
	return s.listInstances(page, limit, func(i *core.SpokInstance) bool {
		return i.SpokerID == userID && i.State == core.InstancePending
	}), nil
}

func (s *Spoks) Wall(_ context.Context, userID int64, page core.Keyset, limit int) ([]core.SpokInstance, error) {
	return s.listInstances(page, limit, func(i *core.SpokInstance) bool {
		return i.SpokerID == userID && i.State == core.InstanceRespoked
	}), nil
}

func (s *Spoks) Respokers(_ context.Context, spokID int64, page core.Keyset, limit int) ([]core.SpokInstance, error) {
	return s.listInstances(page, limit, func(i *core.SpokInstance) bool {
		return i.SpokID == spokID && i.State == core.InstanceRespoked
	}), nil
}

func (s *Spoks) Scoped(_ context.Context, spokID int64, page core.Keyset, limit int) ([]core.SpokInstance, error) {
	return s.listInstances(page, limit, func(i *core.SpokInstance) bool {
		if i.SpokID != spokID {
			return false
		}
		switch i.State {
		case core.InstancePending, core.InstanceRespoked, core.InstanceUnspoked:
			return true
		default:
			return false
		}
	}), nil
}

func (s *Spoks) Last(_ context.Context, page core.Keyset, limit int) ([]core.Spok, error) {
	return s.listSpoks(page, limit, func(*core.Spok) bool { return true }), nil
}

func (s *Spoks) Trendy(_ context.Context, page core.Keyset, limit int) ([]core.Spok, error) {
	return s.listSpoks(page, limit, func(sp *core.Spok) bool { return sp.NbComments > 0 }), nil
}

func (s *Spoks) Popular(_ context.Context, page core.Keyset, limit int) ([]core.Spok, error) {
	return s.listSpoks(page, limit, func(sp *core.Spok) bool { return sp.NbSpoked > 0 }), nil
}

func (s *Spoks) ByCreators(_ context.Context, creatorIDs []int64, page core.Keyset, limit int) ([]core.Spok, error) {
	set := map[int64]struct{}{}
	for _, id := range creatorIDs {
		set[id] = struct{}{}
	}
	return s.listSpoks(page, limit, func(sp *core.Spok) bool {
		_, ok := set[sp.CreatorID]
		return ok
	}), nil
}

func (s *Spoks) SearchTexts(_ context.Context, _ []string, _, _ time.Time, page core.Keyset, limit int) ([]core.Spok, error) {
	return s.listSpoks(page, limit, func(*core.Spok) bool { return true }), nil
}

func (s *Spoks) listSpoks(page core.Keyset, limit int, keep func(*core.Spok) bool) []core.Spok {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []core.Spok
	for _, spok := range s.spoks {
		if spok.Disabled || !keep(spok) || !inBoundary(spok.ID, page) {
			continue
		}
		found = append(found, *spok)
	}
	return pageCut(found, page, limit, func(sp core.Spok) int64 { return sp.ID })
}

func (s *Spoks) listInstances(page core.Keyset, limit int, keep func(*core.SpokInstance) bool) []core.SpokInstance {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []core.SpokInstance
	for _, instance := range s.instances {
		if !keep(instance) || !inBoundary(instance.ID, page) {
			continue
		}
		found = append(found, *instance)
	}
	return pageCut(found, page, limit, func(i core.SpokInstance) int64 { return i.ID })
}

func inBoundary(id int64, page core.Keyset) bool {
	if page.BoundaryID == 0 {
		return true
	}
	if page.Backward {
		return id > page.BoundaryID
	}
	return id < page.BoundaryID
}

// pageCut keeps the limit rows closest to the boundary and hands them back
// id-descending, whichever direction they were fetched in.
func pageCut[T any](found []T, page core.Keyset, limit int, id func(T) int64) []T {
	if page.Backward {
		sort.Slice(found, func(i, j int) bool { return id(found[i]) < id(found[j]) })
	} else {
		sort.Slice(found, func(i, j int) bool { return id(found[i]) > id(found[j]) })
	}
	if len(found) > limit {
		found = found[:limit]
	}
	sort.Slice(found, func(i, j int) bool { return id(found[i]) > id(found[j]) })
	return found
}

type Graph struct {
	mu    sync.Mutex
	edges map[[2]int64]struct{}
}

func NewGraph() *Graph {
	return &Graph{edges: map[[2]int64]struct{}{}}
}

func (g *Graph) Follow(_ context.Context, followerID, followeeID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := [2]int64{followerID, followeeID}
	if _, ok := g.edges[key]; ok {
		return false, nil
	}
	g.edges[key] = struct{}{}
	return true, nil
}

func (g *Graph) Unfollow(_ context.Context, followerID, followeeID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := [2]int64{followerID, followeeID}
	if _, ok := g.edges[key]; !ok {
		return false, nil
	}
	delete(g.edges, key)
	return true, nil
}

func (g *Graph) Follows(_ context.Context, followerID, followeeID int64) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, ok := g.edges[[2]int64{followerID, followeeID}]
	return ok, nil
}

func (g *Graph) Followers(_ context.Context, userID int64, _ core.Keyset, _ int) ([]core.FollowEdge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var edges []core.FollowEdge
	for key := range g.edges {
		if key[1] == userID {
			edges = append(edges, core.FollowEdge{FollowerID: key[0], FolloweeID: key[1]})
		}
	}
	return edges, nil
}

func (g *Graph) Followings(_ context.Context, userID int64, _ core.Keyset, _ int) ([]core.FollowEdge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var edges []core.FollowEdge
	for key := range g.edges {
		if key[0] == userID {
			edges = append(edges, core.FollowEdge{FollowerID: key[0], FolloweeID: key[1]})
		}
	}
	return edges, nil
}

func (g *Graph) FollowerIDs(_ context.Context, userID int64) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var ids []int64
	for key := range g.edges {
		if key[1] == userID {
			ids = append(ids, key[0])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (g *Graph) FollowingIDs(_ context.Context, userID int64) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var ids []int64
	for key := range g.edges {
		if key[0] == userID {
			ids = append(ids, key[1])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type Subscriptions struct {
	mu    sync.Mutex
	pairs map[[2]int64]struct{}
}

func NewSubscriptions() *Subscriptions {
	return &Subscriptions{pairs: map[[2]int64]struct{}{}}
}

func (s *Subscriptions) Subscribe(_ context.Context, userID, spokID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[[2]int64{userID, spokID}] = struct{}{}
	return nil
}

func (s *Subscriptions) Unsubscribe(_ context.Context, userID, spokID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pairs, [2]int64{userID, spokID})
	return nil
}

func (s *Subscriptions) IsSubscribed(_ context.Context, userID, spokID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pairs[[2]int64{userID, spokID}]
	return ok, nil
}

func (s *Subscriptions) SubscriberIDs(_ context.Context, spokID int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int64
	for key := range s.pairs {
		if key[1] == spokID {
			ids = append(ids, key[0])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Publisher records published events for assertions.
type Publisher struct {
	mu     sync.Mutex
	Events []core.Event
}

func (p *Publisher) Publish(_ context.Context, event core.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

func (p *Publisher) OfType(typ core.EventType) []core.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var found []core.Event
	for _, event := range p.Events {
		if event.Type == typ {
			found = append(found, event)
		}
	}
	return found
}

// Deliverer records deliveries for assertions.
type Deliverer struct {
	mu         sync.Mutex
	Deliveries []core.Delivery
}

func (d *Deliverer) Deliver(_ context.Context, delivery core.Delivery) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Deliveries = append(d.Deliveries, delivery)
	return nil
}

func (d *Deliverer) All() []core.Delivery {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]core.Delivery(nil), d.Deliveries...)
}

// Codes is an in-memory CodeStore.
type Codes struct {
	mu    sync.Mutex
	codes map[string]string
}

func NewCodes() *Codes {
	return &Codes{codes: map[string]string{}}
}

func (c *Codes) Put(_ context.Context, phone, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[phone] = code
	return nil
}

func (c *Codes) Get(_ context.Context, phone string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	code, ok := c.codes[phone]
	if !ok {
		return "", core.ErrWrongPhone
	}
	return code, nil
}

func (c *Codes) Delete(_ context.Context, phone string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.codes, phone)
	return nil
}

// SMS records sent codes.
type SMS struct {
	mu   sync.Mutex
	Sent map[string]string
}

func NewSMS() *SMS {
	return &SMS{Sent: map[string]string{}}
}

func (s *SMS) SendCode(_ context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent[phone] = code
	return nil
}

func (s *SMS) LastCode(phone string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Sent[phone]
}
