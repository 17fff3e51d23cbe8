package ui

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

// TableInfo is one labeled table as the inspect command reports it.
type TableInfo struct {
	Label   string `json:"label"`
	Number  string `json:"number"`
	Section int    `json:"section,omitempty"`
	Tagged  bool   `json:"tagged,omitempty"`
	Caption string `json:"caption,omitempty"`
}

type InspectOptions struct {
	JSON bool
}

func RenderInspect(tables []TableInfo, opts InspectOptions) error {
	if opts.JSON {
		return renderInspectJSON(tables)
	}

	renderInspectTable(tables)
	return nil
}

func renderInspectJSON(tables []TableInfo) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(tables); err != nil {
		return fmt.Errorf("encode inspect json: %w", err)
	}

	return nil
}

func renderInspectTable(tables []TableInfo) {
	writer := table.NewWriter()
	writer.SetOutputMirror(os.Stdout)
	writer.SetStyle(table.StyleRounded)

	writer.AppendHeader(table.Row{"LABEL", "NUMBER", "CAPTION"})

	for _, info := range tables {
		number := info.Number
		if info.Tagged {
			number += " (tagged)"
		}
		writer.AppendRow(table.Row{info.Label, number, info.Caption})
	}

	writer.Render()
}
