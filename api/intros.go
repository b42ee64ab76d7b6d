package api

import "context"

func (c *Client) Intros(ctx context.Context, userID string) ([]Intro, error) {
	var out struct {
		Intros []Intro `json:"intros"`
	}
	err := c.doJSON(ctx, "GET", "/intros/"+userID, nil, nil, &out)
	return out.Intros, err
}

type introActionRequest struct {
	IntroID string `json:"intro_id"`
	Action  string `json:"action"`
}

// IntroAction accepts or declines a suggested intro. action is "accept"
// or "decline".
func (c *Client) IntroAction(ctx context.Context, introID, action string) error {
	return c.doJSON(ctx, "POST", "/intros/action", nil, introActionRequest{IntroID: introID, Action: action}, nil)
}

func (c *Client) GenerateIntros(ctx context.Context, userID string) (int, error) {
	var out struct {
		Success          bool `json:"success"`
		SuggestionsCount int  `json:"suggestions_count"`
	}
	err := c.doJSON(ctx, "POST", "/intros/generate/"+userID, nil, nil, &out)
	return out.SuggestionsCount, err
}
