// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"os"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/antgroup/vfsio/modules/streamio"
	"github.com/antgroup/vfsio/modules/term"
	"github.com/antgroup/vfsio/pkg/progress"
)

var (
	hashers = map[string]func() hash.Hash{
		"blake3":  newBlake3,
		"blake2b": newBlake2b,
		"sha256":  sha256.New,
	}
)

func newBlake3() hash.Hash {
	return blake3.New()
}

func newBlake2b() hash.Hash {
	// New256 only fails for keys longer than 64 bytes
	h, _ := blake2b.New256(nil)
	return h
}

type Sum struct {
	Algo  string   `short:"a" name:"algo" enum:"blake3,blake2b,sha256" default:"blake3" help:"Hash algorithm: blake3, blake2b or sha256"`
	Jobs  int      `short:"j" name:"jobs" default:"4" help:"Resources hashed concurrently"`
	URIs  []string `arg:"" name:"uri" help:"Resource paths or URIs"`
	Quiet bool     `short:"q" name:"quiet" help:"Do not show progress"`
}

func (c *Sum) Run(g *Globals) error {
	newHash, ok := hashers[c.Algo]
	if !ok {
		return fmt.Errorf("unsupported hash algorithm '%s'", c.Algo)
	}
	if err := g.load(); err != nil {
		return err
	}
	quiet := c.Quiet || len(c.URIs) < 2 || !term.IsTerminal(os.Stderr.Fd())
	indicators := progress.NewIndicators("Hashing", "Hashing completed", uint64(len(c.URIs)), quiet)
	ictx, cancel := context.WithCancel(g.cancellable.Context())
	indicators.Run(ictx)

	sums := make([]string, len(c.URIs))
	var eg errgroup.Group
	eg.SetLimit(max(c.Jobs, 1))
	for i, uri := range c.URIs {
		eg.Go(func() error {
			sum, err := c.sum(g, uri, newHash())
			if err != nil {
				return fmt.Errorf("%s: %w", uri, err)
			}
			sums[i] = sum
			indicators.Add(1)
			return nil
		})
	}
	err := eg.Wait()
	cancel()
	indicators.Wait()
	if err != nil {
		return err
	}
	for i, uri := range c.URIs {
		fmt.Fprintf(g.stdout, "%s  %s\n", sums[i], uri)
	}
	return nil
}

func (c *Sum) sum(g *Globals, uri string, h hash.Hash) (string, error) {
	f, err := g.open(uri, "rb")
	if err != nil {
		return "", err
	}
	defer f.Close() // nolint
	if _, err := streamio.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
