package blog

import (
	"context"

	"inkwell/internal/apiclient"
	"inkwell/internal/session"
)

// Client wraps the shared transport with the blog API's endpoints.
type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// Register creates an account. The first account on a fresh deployment is
// made an admin by the server.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.api.Post(ctx, "/users/", registerRequest{Email: email, Password: password}, nil)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	if err := c.api.Post(ctx, "/token", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

// Profile fetches the identity behind the current credential.
func (c *Client) Profile(ctx context.Context) (session.Identity, error) {
	var user User
	if err := c.api.Get(ctx, "/users/me", &user); err != nil {
		return session.Identity{}, err
	}
	return session.Identity{ID: user.ID, Email: user.Email, Admin: user.Admin}, nil
}

// ListUsers returns every account. Admin-only on the server side.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.api.Get(ctx, "/users/", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListPosts returns all posts. Publicly readable.
func (c *Client) ListPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	if err := c.api.Get(ctx, "/posts/", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns a single post by ID.
func (c *Client) GetPost(ctx context.Context, id string) (Post, error) {
	var post Post
	if err := c.api.Get(ctx, "/posts/"+id, &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// CreatePost publishes a new post owned by the current identity.
func (c *Client) CreatePost(ctx context.Context, title, content string) (Post, error) {
	var post Post
	if err := c.api.Post(ctx, "/posts/", createPostRequest{Title: title, Content: content}, &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// UpdatePost applies a partial update to an owned post.
func (c *Client) UpdatePost(ctx context.Context, id string, update PostUpdate) (Post, error) {
	var post Post
	if err := c.api.Put(ctx, "/posts/"+id, update, &post); err != nil {
		return Post{}, err
	}
	return post, nil
}

// DeletePost removes an owned post.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/posts/"+id)
}
