// Package blog is the typed surface of the blog API: account and token
// endpoints for the session manager, plus posts and user listing for the UI
// layers. Everything goes through the shared transport, so credential
// attachment and error normalization come for free.
package blog

import "time"

// User is an account as returned by the API.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Admin bool   `json:"is_admin"`
}

// Post is a published blog entry. Only the ownership and author-display
// fields matter to the access core; the rest is carried for the UI.
type Post struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	PublicationDate time.Time `json:"publication_date"`
	OwnerID         string    `json:"owner_id"`
	AuthorEmail     string    `json:"author_email"`
}

// PostUpdate carries a partial update; nil fields are left untouched.
type PostUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
