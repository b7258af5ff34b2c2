// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package platform

import (
	"os"
	"strconv"
	"strings"
)

// Env is a read-only view of the process environment.
type Env interface {
	LookupEnv(key string) (string, bool)
}

// OSEnv reads the real process environment.
type OSEnv struct{}

// LookupEnv implements Env.
func (OSEnv) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapEnv is an in-memory environment, mostly for tests.
type MapEnv map[string]string

// LookupEnv implements Env.
func (m MapEnv) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Has reports whether key is set, regardless of its value.
func Has(env Env, key string) bool {
	_, ok := env.LookupEnv(key)
	return ok
}

// Get returns the trimmed value of the first non-empty key.
func Get(env Env, keys ...string) string {
	for _, key := range keys {
		if v, ok := env.LookupEnv(key); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

// GetInt parses the first non-empty key as an integer. Unset or
// unparsable values yield 0.
func GetInt(env Env, keys ...string) int {
	v := Get(env, keys...)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
