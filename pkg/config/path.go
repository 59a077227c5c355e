// Copyright ©️ Ant Group. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandPath expands a relative or home-relative path to an absolute path.
//
// eg.
//
//	~/.vfsio.toml -> /home/alec/.vfsio.toml
//	~alec/.vfsio.toml -> /home/alec/.vfsio.toml
func ExpandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~") {
		pos := strings.IndexByte(path, '/')
		switch {
		case len(path) == 1:
			if homeDir, err := os.UserHomeDir(); err == nil {
				return homeDir
			}
		case pos == 1:
			if homeDir, err := os.UserHomeDir(); err == nil {
				return filepath.Join(homeDir, path[2:])
			}
		case pos > 1:
			// https://github.com/golang/go/issues/24383
			// macOS may not produce correct results
			if userAccount, err := user.Lookup(path[1:pos]); err == nil {
				return filepath.Join(userAccount.HomeDir, path[pos+1:])
			}
		}
	}
	abspath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abspath
}
