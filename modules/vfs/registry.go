// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"context"
	"net/url"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Opener builds a Resource for a parsed URI.
type Opener func(ctx context.Context, u *url.URL) (Resource, error)

// Registry maps URI schemes to backends.
type Registry struct {
	mu      sync.RWMutex
	openers map[string]Opener
}

func NewRegistry() *Registry {
	return &Registry{openers: make(map[string]Opener)}
}

func (r *Registry) Register(scheme string, o Opener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.openers[strings.ToLower(scheme)] = o
}

func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemes := make([]string, 0, len(r.openers))
	for s := range r.openers {
		schemes = append(schemes, s)
	}
	slices.Sort(schemes)
	return schemes
}

// Resolve returns the Resource addressed by uri. Strings without a scheme
// (and Windows drive paths) are treated as local paths.
func (r *Registry) Resolve(ctx context.Context, uri string) (Resource, error) {
	u, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	o, ok := r.openers[u.Scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, Errorf(NotSupported, "Operation not supported: no backend for scheme '%s'", u.Scheme)
	}
	return o(ctx, u)
}

func ParseURI(uri string) (*url.URL, error) {
	if len(uri) == 0 {
		return nil, Errorf(InvalidArgument, "Empty resource address")
	}
	if !strings.Contains(uri, "://") || filepath.VolumeName(uri) != "" {
		p, err := filepath.Abs(uri)
		if err != nil {
			return nil, FromError(err)
		}
		return &url.URL{Scheme: "file", Path: filepath.ToSlash(p)}, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, Errorf(InvalidArgument, "Invalid resource address '%s': %v", uri, err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, nil
}
