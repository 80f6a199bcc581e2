// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// ValidateArticle validates an Article according to domain rules.
//
// Validation rules:
//   - Title must not be blank
//   - Link must not be blank
//   - PublicationDate must be set
//
// NOT validated (populated by enrichment):
//   - Topics and Entities (may be empty when enrichment degraded)
//   - Content (optional)
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}

	if strings.TrimSpace(article.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyTitle)
	}

	if strings.TrimSpace(article.Link) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyLink)
	}

	if article.PublicationDate.IsZero() {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrMissingPublicationDate)
	}

	return nil
}

// IsValidURL reports whether candidate is an absolute http or https URL with a
// well-formed authority.
func IsValidURL(candidate string) bool {
	if candidate == "" || strings.ContainsAny(candidate, " \t\r\n") {
		return false
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}

	if u.Opaque != "" || u.Host == "" {
		return false
	}

	if port := u.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 1 || n > 65535 {
			return false
		}
	} else if strings.HasSuffix(u.Host, ":") {
		return false
	}

	return isValidHost(u.Hostname())
}

func isValidHost(host string) bool {
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	if strings.EqualFold(host, "localhost") {
		return true
	}
	if len(host) > 253 {
		return false
	}

	host = strings.TrimSuffix(host, ".")
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if !isValidLabel(label) {
			return false
		}
	}

	// The top-level label must not be purely numeric.
	tld := labels[len(labels)-1]
	if _, err := strconv.Atoi(tld); err == nil {
		return false
	}
	return true
}

func isValidLabel(label string) bool {
	if label == "" || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		case r > 127:
			// internationalised labels
		default:
			return false
		}
	}
	return true
}
