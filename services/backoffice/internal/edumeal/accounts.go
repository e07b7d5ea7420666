package edumeal

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/edumeal/backoffice/services/backoffice/internal/health"
)

// Login exchanges credentials for a token pair. It never carries a bearer.
func (c *Client) Login(ctx context.Context, email, password string) (Tokens, error) {
	payload := map[string]string{"email": email, "password": password}
	req, err := jsonRequest(http.MethodPost, "/auth/login", payload)
	if err != nil {
		return Tokens{}, err
	}

	var dto tokensDTO
	if err := c.call(WithCredentials(ctx, nil), req, &dto); err != nil {
		return Tokens{}, err
	}

	tokens := dto.tokens()
	if tokens.AccessToken == "" {
		return Tokens{}, errors.New("login: response carries no access token")
	}
	return tokens, nil
}

func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (Tokens, error) {
	req, err := jsonRequest(http.MethodPost, refreshPath, map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return Tokens{}, err
	}

	var dto tokensDTO
	if err := c.call(WithCredentials(ctx, nil), req, &dto); err != nil {
		return Tokens{}, err
	}

	tokens := dto.tokens()
	if tokens.AccessToken == "" {
		return Tokens{}, errors.New("refresh: response carries no access token")
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}
	return tokens, nil
}

// Children lists the students linked to the signed-in parent.
func (c *Client) Children(ctx context.Context) ([]Student, error) {
	var dtos []studentDTO
	if err := c.call(ctx, request{method: http.MethodGet, path: "/parents/me/students"}, &dtos); err != nil {
		return nil, err
	}

	out := make([]Student, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.student())
	}
	return out, nil
}

func (c *Client) HealthRecords(ctx context.Context, studentID int) ([]health.Measurement, error) {
	var dtos []healthRecordDTO
	path := fmt.Sprintf("/health/students/%d/records", studentID)
	if err := c.call(ctx, request{method: http.MethodGet, path: path}, &dtos); err != nil {
		return nil, err
	}

	out := make([]health.Measurement, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, health.Measurement{
			Date:     parseTime(firstString(d.RecordAt, d.RecordDate)),
			HeightCm: d.HeightCm,
			WeightKg: d.WeightKg,
		})
	}
	return out, nil
}
