package api

import (
	"net/http"
	"time"

	"spokd/internal/core"
	"spokd/internal/identity"
)

const (
	resourceRegistration = "registration"
	resourceAuth         = "authentication"
	resourceProfile      = "profile"
	resourceSupport      = "support"
)

type phoneRequest struct {
	Phone string `json:"phone"`
}

type confirmRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (s *Server) handleRegisterPhone(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceRegistration, err)
		return
	}

	if err := s.Identity.RegisterPhone(r.Context(), req.Phone); err != nil {
		respondError(w, resourceRegistration, err)
		return
	}
	respond(w, resourceRegistration, http.StatusOK, map[string]string{"phone": req.Phone})
}

func (s *Server) handleConfirmCode(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceRegistration, err)
		return
	}

	if err := s.Identity.ConfirmCode(r.Context(), req.Phone, req.Code); err != nil {
		respondError(w, resourceRegistration, err)
		return
	}
	respond(w, resourceRegistration, http.StatusOK, map[string]bool{"confirmed": true})
}

type completeRegistrationRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`

	Nickname string    `json:"nickname"`
	Gender   string    `json:"gender"`
	Birthday time.Time `json:"birthday"`
	Location string    `json:"location"`
	Geo      core.Geo  `json:"geo"`

	ContactPhones []string `json:"contact_phones"`
}

func (s *Server) handleCompleteRegistration(w http.ResponseWriter, r *http.Request) {
	var req completeRegistrationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceRegistration, err)
		return
	}

	registration, err := s.Identity.CompleteRegistration(r.Context(), identity.RegistrationParams{
		Phone:         req.Phone,
		Code:          req.Code,
		Nickname:      req.Nickname,
		Gender:        req.Gender,
		Birthday:      req.Birthday,
		Location:      req.Location,
		Geo:           req.Geo,
		ContactPhones: req.ContactPhones,
	})
	if err != nil {
		respondError(w, resourceRegistration, err)
		return
	}

	respond(w, resourceRegistration, http.StatusCreated, map[string]any{
		"account":      profileView(registration.Account),
		"token":        registration.Token,
		"contacts_ids": registration.ContactIDs,
	})
}

func (s *Server) handleRequestLogin(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceAuth, err)
		return
	}

	if err := s.Identity.RequestLogin(r.Context(), req.Phone); err != nil {
		respondError(w, resourceAuth, err)
		return
	}
	respond(w, resourceAuth, http.StatusOK, map[string]string{"phone": req.Phone})
}

func (s *Server) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceAuth, err)
		return
	}

	account, token, err := s.Identity.Authenticate(r.Context(), req.Phone, req.Code)
	if err != nil {
		respondError(w, resourceAuth, err)
		return
	}

	respond(w, resourceAuth, http.StatusOK, map[string]any{
		"account": profileView(account),
		"token":   token,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	account, err := s.Accounts.Get(r.Context(), userID(r.Context()))
	if err != nil {
		respondError(w, resourceProfile, err)
		return
	}
	respond(w, resourceProfile, http.StatusOK, profileView(account))
}

func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	if err := s.Identity.Unregister(r.Context(), userID(r.Context())); err != nil {
		respondError(w, resourceProfile, err)
		return
	}
	respond(w, resourceProfile, http.StatusOK, map[string]bool{"deleted": true})
}

type profileRequest struct {
	Nickname   string    `json:"nickname"`
	Gender     string    `json:"gender"`
	Birthday   time.Time `json:"birthday"`
	Location   string    `json:"location"`
	Geo        core.Geo  `json:"geo"`
	PictureURL string    `json:"picture_url"`
	CoverURL   string    `json:"cover_url"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceProfile, err)
		return
	}

	account, err := s.Identity.UpdateProfile(r.Context(), userID(r.Context()), identity.ProfileParams{
		Nickname:   req.Nickname,
		Gender:     req.Gender,
		Birthday:   req.Birthday,
		Location:   req.Location,
		Geo:        req.Geo,
		PictureURL: req.PictureURL,
		CoverURL:   req.CoverURL,
	})
	if err != nil {
		respondError(w, resourceProfile, err)
		return
	}
	respond(w, resourceProfile, http.StatusOK, profileView(account))
}

type settingsRequest struct {
	HelpEnabled       bool `json:"help_enabled"`
	FollowersPrivate  bool `json:"followers_private"`
	FollowingsPrivate bool `json:"followings_private"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceProfile, err)
		return
	}

	account, err := s.Identity.UpdateSettings(r.Context(), userID(r.Context()), identity.Settings{
		HelpEnabled:       req.HelpEnabled,
		FollowersPrivate:  req.FollowersPrivate,
		FollowingsPrivate: req.FollowingsPrivate,
	})
	if err != nil {
		respondError(w, resourceProfile, err)
		return
	}
	respond(w, resourceProfile, http.StatusOK, profileView(account))
}

func (s *Server) handleRequestPhoneUpdate(w http.ResponseWriter, r *http.Request) {
	var req phoneRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceProfile, err)
		return
	}

	if err := s.Identity.RequestPhoneUpdate(r.Context(), userID(r.Context()), req.Phone); err != nil {
		respondError(w, resourceProfile, err)
		return
	}
	respond(w, resourceProfile, http.StatusOK, map[string]string{"phone": req.Phone})
}

func (s *Server) handleConfirmPhoneUpdate(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceProfile, err)
		return
	}

	if err := s.Identity.ConfirmPhoneUpdate(r.Context(), userID(r.Context()), req.Phone, req.Code); err != nil {
		respondError(w, resourceProfile, err)
		return
	}
	respond(w, resourceProfile, http.StatusOK, map[string]bool{"updated": true})
}

type supportRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSupport(w http.ResponseWriter, r *http.Request) {
	var req supportRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, resourceSupport, err)
		return
	}

	if err := s.Identity.Support(r.Context(), userID(r.Context()), req.Text); err != nil {
		respondError(w, resourceSupport, err)
		return
	}
	respond(w, resourceSupport, http.StatusOK, map[string]bool{"sent": true})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, "user", err)
		return
	}

	account, err := s.Accounts.Get(r.Context(), id)
	if err != nil {
		respondError(w, "user", err)
		return
	}
	respond(w, "user", http.StatusOK, accountView(account))
}
