// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package output publishes run results and renders the run summary.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/cicd-ai-toolkit/ci-changelog/pkg/buildctx"
	"github.com/cicd-ai-toolkit/ci-changelog/pkg/changelog"
)

// Supported output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Report is what a run shows when it finishes.
type Report struct {
	Store   *buildctx.Store
	Commits []changelog.Commit
	Polls   int
}

// Formatter renders a Report.
type Formatter struct {
	format string
	color  bool
}

// NewFormatter creates a formatter for format. Unknown formats fall back
// to a table.
func NewFormatter(format string) *Formatter {
	f := &Formatter{format: strings.ToLower(strings.TrimSpace(format))}
	if f.format != FormatJSON {
		f.format = FormatTable
	}
	return f
}

// WithColor enables ANSI colors in table output.
func (f *Formatter) WithColor(color bool) *Formatter {
	f.color = color
	return f
}

// Format writes the report to w.
func (f *Formatter) Format(w io.Writer, r *Report) error {
	if f.format == FormatJSON {
		return f.formatJSON(w, r)
	}
	f.formatTable(w, r)
	return nil
}

func (f *Formatter) formatJSON(w io.Writer, r *Report) error {
	doc := make(map[string]any, len(buildctx.Keys))
	for _, key := range buildctx.Keys {
		value, _ := r.Store.Get(key)
		if key == buildctx.KeyChangelog && json.Valid([]byte(value)) {
			doc[key] = json.RawMessage(value)
			continue
		}
		doc[key] = value
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (f *Formatter) formatTable(w io.Writer, r *Report) {
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.SetStyle(table.StyleLight)
	summary.SetTitle(f.paint(text.FgCyan, "Summary for ci_changelog"))
	for _, key := range buildctx.Keys[:len(buildctx.Keys)-1] {
		value, _ := r.Store.Get(key)
		summary.AppendRow(table.Row{f.paint(text.FgHiBlue, key), value})
	}
	summary.AppendFooter(table.Row{"POLLS", r.Polls})
	summary.Render()

	changes := table.NewWriter()
	changes.SetOutputMirror(w)
	changes.SetStyle(table.StyleLight)
	changes.SetTitle(f.paint(text.FgCyan, fmt.Sprintf("Changelog (%d)", len(r.Commits))))
	changes.AppendHeader(table.Row{"Date", "Title", "Author", "Email"})
	for _, c := range r.Commits {
		changes.AppendRow(table.Row{c.Timestamp, c.Title, c.Author, c.Email})
	}
	if len(r.Commits) == 0 {
		changes.AppendRow(table.Row{f.paint(text.FgYellow, "No changes found"), "", "", ""})
	}
	changes.Render()
}

func (f *Formatter) paint(color text.Color, s string) string {
	if !f.color {
		return s
	}
	return color.Sprint(s)
}
