// Copyright (c) 2026 Centra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package captcha generates and verifies one-time image challenges used to
// gate account registration.
//
// # Architecture
//
// Rendering is delegated to the base64Captcha driver; this package owns the
// challenge lifecycle (Redis storage, TTL, one-time consumption). Challenge
// answers never leave the server.
package captcha

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mojocn/base64Captcha"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/centra/internal/platform/constants"
)

// Challenge is the client-facing half of a generated captcha.
//
// The image is a self-contained data URI so clients can drop it straight
// into an <img> tag without a second request.
type Challenge struct {
	ID    string `json:"captcha_id"`
	Image string `json:"captcha_image"`
}

// Service generates image challenges and verifies their answers.
type Service struct {
	client *redis.Client
	driver *base64Captcha.DriverString
}

// NewService creates a captcha [Service] backed by the given Redis client.
func NewService(client *redis.Client) *Service {
	driver := base64Captcha.NewDriverString(
		constants.CaptchaImageHeight,
		constants.CaptchaImageWidth,
		0, // noiseCount
		base64Captcha.OptionShowHollowLine,
		constants.CaptchaLength,
		constants.CaptchaCharset,
		nil, // default background
		nil, // default font storage
		nil, // default fonts
	)

	return &Service{
		client: client,
		driver: driver,
	}
}

/*
Generate creates a new challenge and stores its answer for
[constants.CaptchaTTL].

Returns:
  - *Challenge: challenge ID plus base64 PNG data URI
  - error: wrapped render or store error
*/
func (service *Service) Generate(ctx context.Context) (*Challenge, error) {

	// 1. Produce the random code and its rendered form
	_, content, answer := service.driver.GenerateIdQuestionAnswer()

	item, err := service.driver.DrawCaptcha(content)
	if err != nil {
		return nil, fmt.Errorf("captcha: failed to render challenge: %w", err)
	}

	// 2. Store the expected answer behind a fresh ID
	challengeID := uuid.NewString()
	key := constants.RedisPrefixCaptcha + challengeID

	if err := service.client.Set(ctx, key, answer, constants.CaptchaTTL).Err(); err != nil {
		return nil, fmt.Errorf("captcha: failed to store challenge: %w", err)
	}

	return &Challenge{
		ID:    challengeID,
		Image: item.EncodeB64string(),
	}, nil
}

/*
Verify checks an answer against the stored challenge.

The comparison is case-insensitive. A correct answer consumes the challenge;
a wrong answer leaves it in place until its TTL runs out, so a typo does not
force the client to fetch a new image.

Returns:
  - bool: true only for a correct, unexpired answer
  - error: wrapped store error (wrong/expired answers are not errors)
*/
func (service *Service) Verify(ctx context.Context, captchaID, answer string) (bool, error) {
	if captchaID == "" || answer == "" {
		return false, nil
	}

	key := constants.RedisPrefixCaptcha + captchaID

	expected, err := service.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("captcha: failed to load challenge: %w", err)
	}

	if !strings.EqualFold(expected, answer) {
		return false, nil
	}

	// One-time use: a consumed challenge can never be replayed.
	if err := service.client.Del(ctx, key).Err(); err != nil {
		return false, fmt.Errorf("captcha: failed to consume challenge: %w", err)
	}

	return true, nil
}

/*
Remove discards a challenge without verifying it, e.g. when the client
requests a fresh image.
*/
func (service *Service) Remove(ctx context.Context, captchaID string) error {
	if captchaID == "" {
		return nil
	}
	if err := service.client.Del(ctx, constants.RedisPrefixCaptcha+captchaID).Err(); err != nil {
		return fmt.Errorf("captcha: failed to remove challenge: %w", err)
	}
	return nil
}
