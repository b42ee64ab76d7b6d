package api

import "context"

func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (User, error) {
	var user User
	err := c.doJSON(ctx, "POST", "/users", nil, req, &user)
	return user, err
}

func (c *Client) GetUser(ctx context.Context, userID string) (User, error) {
	var user User
	err := c.doJSON(ctx, "GET", "/users/"+userID, nil, nil, &user)
	return user, err
}
