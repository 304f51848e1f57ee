package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-session-guard/session"
	"github.com/pkg/errors"
)

// userInfoResponse is the payload shape of the Google userinfo endpoint.
type userInfoResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Picture    string `json:"picture"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// fetchUserInfo retrieves the user's profile with the access token as a
// bearer credential and normalises it into the session User shape. Results
// are cached per token for a short TTL.
func (c *Controller) fetchUserInfo(ctx context.Context, accessToken string) (*session.User, error) {
	if cached, ok := c.profiles.Get(accessToken); ok {
		return cached.(*session.User), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.UserInfoURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Controller.fetchUserInfo] failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, ErrProfileFetch.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrap(ErrProfileFetch, fmt.Sprintf("userinfo returned status %d", resp.StatusCode))
	}

	var payload userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, ErrProfileFetch.Error())
	}

	user := &session.User{
		ID:         payload.ID,
		Email:      payload.Email,
		Name:       payload.Name,
		Picture:    payload.Picture,
		GivenName:  payload.GivenName,
		FamilyName: payload.FamilyName,
	}
	c.profiles.SetDefault(accessToken, user)
	return user, nil
}

// logIDTokenClaims decodes the ID token claims without verification, purely
// for debug logging. The session trusts the userinfo endpoint, not the ID
// token.
func (c *Controller) logIDTokenClaims(rawIDToken string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, claims); err != nil {
		c.logger.Debug().Err(err).Msg("could not decode id token")
		return
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	c.logger.Debug().Str("sub", sub).Str("email", email).Msg("id token received")
}
