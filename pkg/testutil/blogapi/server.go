// Package blogapi is an in-memory replica of the blog API used as a test
// double. It mirrors the real service's contract: bearer tokens are HS256
// JWTs, the first registered account is an admin, and post mutation is
// owner-only.
package blogapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenLifetime = 30 * time.Minute

type user struct {
	ID       string
	Email    string
	Password string
	Admin    bool
}

type post struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	PublicationDate time.Time `json:"publication_date"`
	OwnerID         string    `json:"owner_id"`
}

// Server is the fake blog API. Zero value is not usable; call New.
type Server struct {
	httpServer *httptest.Server
	signingKey []byte

	mu       sync.Mutex
	users    map[string]*user
	posts    map[string]*post
	lockdown bool
}

// New starts the fake API on an ephemeral port.
func New() *Server {
	s := &Server{
		signingKey: []byte("test-signing-key"),
		users:      make(map[string]*user),
		posts:      make(map[string]*post),
	}

	r := chi.NewRouter()
	r.Post("/users/", s.handleRegister)
	r.Post("/token", s.handleToken)
	r.Get("/users/me", s.withAuth(s.handleMe))
	r.Get("/users/", s.withAuth(s.handleListUsers))
	r.Post("/posts/", s.withAuth(s.handleCreatePost))
	r.Get("/posts/", s.handleListPosts)
	r.Get("/posts/{id}", s.handleGetPost)
	r.Put("/posts/{id}", s.withAuth(s.handleUpdatePost))
	r.Delete("/posts/{id}", s.withAuth(s.handleDeletePost))

	s.httpServer = httptest.NewServer(r)
	return s
}

// URL returns the base URL of the fake API.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the fake API down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// RevokeAll rejects every bearer token, issued or future, until RestoreAll.
// Token issuance keeps working, so tests can exercise a login whose profile
// fetch then fails.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockdown = true
}

// RestoreAll undoes RevokeAll.
func (s *Server) RestoreAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockdown = false
}

// UserID returns the ID of the registered account with the given email, or
// the empty string.
func (s *Server) UserID(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u.ID
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == body.Email {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	u := &user{
		ID:       uuid.NewString(),
		Email:    body.Email,
		Password: body.Password,
		Admin:    len(s.users) == 0,
	}
	s.users[u.ID] = u
	writeJSON(w, http.StatusCreated, userResponse(u))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var body credentialsBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	s.mu.Lock()
	var found *user
	for _, u := range s.users {
		if u.Email == body.Email {
			found = u
			break
		}
	}
	s.mu.Unlock()

	if found == nil || found.Password != body.Password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	claims := jwt.MapClaims{
		"sub": found.ID,
		"exp": time.Now().Add(tokenLifetime).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// withAuth validates the bearer token and resolves the calling user.
func (s *Server) withAuth(next func(http.ResponseWriter, *http.Request, *user)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.signingKey, nil
		})
		if err != nil || !token.Valid {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		u, exists := s.users[sub]
		lockdown := s.lockdown
		s.mu.Unlock()
		if !exists || lockdown {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r, u)
	}
}

func userResponse(u *user) map[string]any {
	return map[string]any{
		"id":       u.ID,
		"email":    u.Email,
		"is_admin": u.Admin,
	}
}

func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, u *user) {
	writeJSON(w, http.StatusOK, userResponse(u))
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request, u *user) {
	if !u.Admin {
		writeDetail(w, http.StatusForbidden, "Not authorized")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.users))
	for _, other := range s.users {
		out = append(out, userResponse(other))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) postResponse(p *post) map[string]any {
	author := ""
	if owner, ok := s.users[p.OwnerID]; ok {
		author = owner.Email
	}
	return map[string]any{
		"id":               p.ID,
		"title":            p.Title,
		"content":          p.Content,
		"publication_date": p.PublicationDate,
		"owner_id":         p.OwnerID,
		"author_email":     author,
	}
}

type postBody struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request, u *user) {
	var body postBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Title == nil || body.Content == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p := &post{
		ID:              uuid.NewString(),
		Title:           *body.Title,
		Content:         *body.Content,
		PublicationDate: time.Now().UTC(),
		OwnerID:         u.ID,
	}
	s.posts[p.ID] = p
	writeJSON(w, http.StatusCreated, s.postResponse(p))
}

func (s *Server) handleListPosts(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, s.postResponse(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[chi.URLParam(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	writeJSON(w, http.StatusOK, s.postResponse(p))
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request, u *user) {
	var body postBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[chi.URLParam(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	if p.OwnerID != u.ID {
		writeDetail(w, http.StatusForbidden, "Not authorized to update this post")
		return
	}
	if body.Title != nil {
		p.Title = *body.Title
	}
	if body.Content != nil {
		p.Content = *body.Content
	}
	writeJSON(w, http.StatusOK, s.postResponse(p))
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request, u *user) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[chi.URLParam(r, "id")]
	if !ok {
		writeDetail(w, http.StatusNotFound, "Post not found")
		return
	}
	if p.OwnerID != u.ID {
		writeDetail(w, http.StatusForbidden, "Not authorized to delete this post")
		return
	}
	delete(s.posts, chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}
