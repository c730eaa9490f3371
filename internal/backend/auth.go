package backend

import (
	"context"
	"net/http"
)

// Session is the reply to login and register.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	env := envelope{}
	if err := c.Do(ctx, Request{
		Operation: "auth.login",
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      creds,
		Fallback:  "Login failed. Please check your credentials.",
	}, &env); err != nil {
		return nil, err
	}
	return decodeSession(env)
}

// Register posts an already cleaned registration payload.
func (c *Client) Register(ctx context.Context, payload map[string]any) (*Session, error) {
	env := envelope{}
	if err := c.Do(ctx, Request{
		Operation: "auth.register",
		Method:    http.MethodPost,
		Path:      "/auth/register",
		Body:      payload,
		Fallback:  "Registration failed. Please try again.",
	}, &env); err != nil {
		return nil, err
	}
	return decodeSession(env)
}

// Me returns the canonical profile behind token.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	env := envelope{}
	if err := c.Do(ctx, Request{
		Operation: "auth.me",
		Path:      "/auth/me",
		Token:     token,
		Fallback:  "Failed to load your profile",
	}, &env); err != nil {
		return nil, err
	}
	var user User
	if err := env.pick(&user, "user"); err != nil {
		return nil, decodeError(err, "Failed to load your profile")
	}
	return &user, nil
}

func decodeSession(env envelope) (*Session, error) {
	var out Session
	if err := env.pick(&out.Token, "token", "accessToken"); err != nil {
		return nil, decodeError(err, "Unexpected login response")
	}
	if err := env.pick(&out.User, "user"); err != nil {
		return nil, decodeError(err, "Unexpected login response")
	}
	return &out, nil
}
