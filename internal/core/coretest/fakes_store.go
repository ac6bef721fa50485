package coretest

import (
	"context"
	"sort"
	"sync"

	"spokd/internal/core"
)

type Comments struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*core.Comment
}

func NewComments() *Comments {
	return &Comments{byID: map[int64]*core.Comment{}}
}

func (c *Comments) Get(_ context.Context, id int64) (*core.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	comment, ok := c.byID[id]
	if !ok {
		return nil, core.ErrCommentNotFound
	}
	copied := *comment
	return &copied, nil
}

func (c *Comments) Create(_ context.Context, comment *core.Comment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	comment.ID = c.nextID
	copied := *comment
	c.byID[comment.ID] = &copied
	return nil
}

func (c *Comments) Update(_ context.Context, comment *core.Comment) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[comment.ID]; !ok {
		return core.ErrCommentNotFound
	}
	copied := *comment
	c.byID[comment.ID] = &copied
	return nil
}

func (c *Comments) Delete(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byID[id]; !ok {
		return core.ErrCommentNotFound
	}
	delete(c.byID, id)
	return nil
}

func (c *Comments) BySpok(_ context.Context, spokID int64, page core.Keyset, limit int) ([]core.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var found []core.Comment
	for _, comment := range c.byID {
		if comment.SpokID != spokID {
			continue
		}
		if !inBoundary(comment.ID, page) {
			continue
		}
		found = append(found, *comment)
	}
	return pageCut(found, page, limit, func(x core.Comment) int64 { return x.ID }), nil
}

func (c *Comments) AuthorIDs(_ context.Context, spokID int64) ([]int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := map[int64]struct{}{}
	var ids []int64
	for _, comment := range c.byID {
		if comment.SpokID != spokID {
			continue
		}
		if _, ok := seen[comment.AuthorID]; ok {
			continue
		}
		seen[comment.AuthorID] = struct{}{}
		ids = append(ids, comment.AuthorID)
	}
	return ids, nil
}

type Polls struct {
	mu        sync.Mutex
	nextID    int64
	questions map[int64]*core.PollQuestion
	answers   map[int64]*core.PollAnswer
	picks     map[[2]int64]int64
}

func NewPolls() *Polls {
	return &Polls{
		questions: map[int64]*core.PollQuestion{},
		answers:   map[int64]*core.PollAnswer{},
		picks:     map[[2]int64]int64{},
	}
}

func (p *Polls) CreatePoll(_ context.Context, spokID int64, poll *core.PollContent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, q := range poll.Questions {
		p.nextID++
		question := &core.PollQuestion{ID: p.nextID, SpokID: spokID, Rank: q.Rank, Text: q.Text}
		p.questions[question.ID] = question

		for _, a := range q.Answers {
			p.nextID++
			p.answers[p.nextID] = &core.PollAnswer{
				ID:         p.nextID,
				QuestionID: question.ID,
				Rank:       a.Rank,
				Text:       a.Text,
			}
		}
	}
	return nil
}

func (p *Polls) Question(_ context.Context, id int64) (*core.PollQuestion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	question, ok := p.questions[id]
	if !ok {
		return nil, core.ErrQuestionNotFound
	}
	copied := *question
	return &copied, nil
}

func (p *Polls) Questions(_ context.Context, spokID int64) ([]core.PollQuestion, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var found []core.PollQuestion
	for _, question := range p.questions {
		if question.SpokID == spokID {
			found = append(found, *question)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Rank < found[j].Rank })
	return found, nil
}

func (p *Polls) Answers(_ context.Context, questionID int64) ([]core.PollAnswer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var found []core.PollAnswer
	for _, answer := range p.answers {
		if answer.QuestionID == questionID {
			found = append(found, *answer)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Rank < found[j].Rank })
	return found, nil
}

func (p *Polls) RecordAnswer(_ context.Context, questionID, answerID, userID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.picks[[2]int64{questionID, userID}] = answerID
	return nil
}

func (p *Polls) AnsweredCount(_ context.Context, spokID, userID int64) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var count int64
	for key := range p.picks {
		if key[1] != userID {
			continue
		}
		question, ok := p.questions[key[0]]
		if ok && question.SpokID == spokID {
			count++
		}
	}
	return count, nil
}

type Groups struct {
	mu      sync.Mutex
	nextID  int64
	groups  map[int64]*core.Group
	members map[int64][]core.GroupMember
}

func NewGroups() *Groups {
	return &Groups{groups: map[int64]*core.Group{}, members: map[int64][]core.GroupMember{}}
}

func (g *Groups) Get(_ context.Context, id int64) (*core.Group, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	group, ok := g.groups[id]
	if !ok {
		return nil, core.ErrGroupNotFound
	}
	copied := *group
	return &copied, nil
}

func (g *Groups) Create(_ context.Context, group *core.Group) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	group.ID = g.nextID
	copied := *group
	g.groups[group.ID] = &copied
	return nil
}

func (g *Groups) Update(_ context.Context, group *core.Group) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.groups[group.ID]; !ok {
		return core.ErrGroupNotFound
	}
	copied := *group
	g.groups[group.ID] = &copied
	return nil
}

func (g *Groups) Delete(_ context.Context, id int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.groups[id]; !ok {
		return core.ErrGroupNotFound
	}
	delete(g.groups, id)
	delete(g.members, id)
	return nil
}

func (g *Groups) ByOwner(_ context.Context, ownerID int64) ([]core.Group, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var found []core.Group
	for _, group := range g.groups {
		if group.OwnerID == ownerID {
			found = append(found, *group)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].ID < found[j].ID })
	return found, nil
}

func (g *Groups) AddMembers(_ context.Context, groupID int64, members []core.GroupMember) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[groupID] = append(g.members[groupID], members...)
	return nil
}

func (g *Groups) RemoveMembers(_ context.Context, groupID int64, userIDs []int64, phones []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	users := map[int64]struct{}{}
	for _, id := range userIDs {
		users[id] = struct{}{}
	}
	contacts := map[string]struct{}{}
	for _, phone := range phones {
		contacts[phone] = struct{}{}
	}

	var kept []core.GroupMember
	for _, member := range g.members[groupID] {
		if _, ok := users[member.UserID]; ok && member.UserID > 0 {
			continue
		}
		if _, ok := contacts[member.ContactPhone]; ok && member.ContactPhone != "" {
			continue
		}
		kept = append(kept, member)
	}
	g.members[groupID] = kept
	return nil
}

func (g *Groups) Members(_ context.Context, groupID int64) ([]core.GroupMember, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]core.GroupMember(nil), g.members[groupID]...), nil
}

func (g *Groups) MemberUserIDs(_ context.Context, groupID int64) ([]int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var ids []int64
	for _, member := range g.members[groupID] {
		if member.UserID > 0 {
			ids = append(ids, member.UserID)
		}
	}
	return ids, nil
}

type Notifications struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*core.Notification
}

func NewNotifications() *Notifications {
	return &Notifications{byID: map[int64]*core.Notification{}}
}

func (n *Notifications) Get(_ context.Context, id int64) (*core.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	notification, ok := n.byID[id]
	if !ok || notification.Removed {
		return nil, core.ErrNotificationNotFound
	}
	copied := *notification
	return &copied, nil
}

func (n *Notifications) Create(_ context.Context, notifications []core.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := range notifications {
		n.nextID++
		notifications[i].ID = n.nextID
		copied := notifications[i]
		n.byID[copied.ID] = &copied
	}
	return nil
}

func (n *Notifications) ByRecipient(_ context.Context, recipientID int64, page core.Keyset, limit int) ([]core.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var found []core.Notification
	for _, notification := range n.byID {
		if notification.RecipientID != recipientID || notification.Removed {
			continue
		}
		if !inBoundary(notification.ID, page) {
			continue
		}
		found = append(found, *notification)
	}
	return pageCut(found, page, limit, func(x core.Notification) int64 { return x.ID }), nil
}

func (n *Notifications) MarkRead(_ context.Context, recipientID int64, ids []int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, id := range ids {
		if notification, ok := n.byID[id]; ok && notification.RecipientID == recipientID {
			notification.Read = true
		}
	}
	return nil
}

func (n *Notifications) Remove(_ context.Context, id int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	notification, ok := n.byID[id]
	if !ok || notification.Removed {
		return core.ErrNotificationNotFound
	}
	notification.Removed = true
	return nil
}

type Talks struct {
	mu       sync.Mutex
	nextID   int64
	talks    map[int64]*core.Talk
	messages map[int64]*core.Message
}

func NewTalks() *Talks {
	return &Talks{talks: map[int64]*core.Talk{}, messages: map[int64]*core.Message{}}
}

func (t *Talks) Get(_ context.Context, id int64) (*core.Talk, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	talk, ok := t.talks[id]
	if !ok {
		return nil, core.ErrTalkNotFound
	}
	copied := *talk
	return &copied, nil
}

func (t *Talks) GetOrCreate(_ context.Context, a, b int64) (*core.Talk, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	low, high := a, b
	if low > high {
		low, high = high, low
	}

	for _, talk := range t.talks {
		if talk.PeerLow == low && talk.PeerHigh == high {
			copied := *talk
			return &copied, nil
		}
	}

	t.nextID++
	talk := &core.Talk{ID: t.nextID, PeerLow: low, PeerHigh: high}
	t.talks[talk.ID] = talk
	copied := *talk
	return &copied, nil
}

func (t *Talks) ByUser(_ context.Context, userID int64, page core.Keyset, limit int) ([]core.Talk, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var found []core.Talk
	for _, talk := range t.talks {
		if !talk.Has(userID) {
			continue
		}
		if !inBoundary(talk.ID, page) {
			continue
		}
		found = append(found, *talk)
	}
	return pageCut(found, page, limit, func(x core.Talk) int64 { return x.ID }), nil
}

func (t *Talks) Delete(_ context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.talks[id]; !ok {
		return core.ErrTalkNotFound
	}
	delete(t.talks, id)
	for messageID, message := range t.messages {
		if message.TalkID == id {
			delete(t.messages, messageID)
		}
	}
	return nil
}

func (t *Talks) Message(_ context.Context, id int64) (*core.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	message, ok := t.messages[id]
	if !ok || message.Removed {
		return nil, core.ErrMessageNotFound
	}
	copied := *message
	return &copied, nil
}

func (t *Talks) AddMessage(_ context.Context, message *core.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nextID++
	message.ID = t.nextID
	copied := *message
	t.messages[message.ID] = &copied
	return nil
}

func (t *Talks) Messages(_ context.Context, talkID int64, page core.Keyset, limit int) ([]core.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var found []core.Message
	for _, message := range t.messages {
		if message.TalkID != talkID || message.Removed {
			continue
		}
		if !inBoundary(message.ID, page) {
			continue
		}
		found = append(found, *message)
	}
	return pageCut(found, page, limit, func(x core.Message) int64 { return x.ID }), nil
}

func (t *Talks) RemoveMessage(_ context.Context, id int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	message, ok := t.messages[id]
	if !ok || message.Removed {
		return core.ErrMessageNotFound
	}
	message.Removed = true
	return nil
}
