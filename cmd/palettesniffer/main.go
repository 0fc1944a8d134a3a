// palettesniffer - colour palette extraction for images and webpages
//
// palettesniffer clusters image pixels into dominant, secondary and accent
// colours, and resolves webpage palettes through a chain of rendering,
// stylesheet and metadata strategies.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import "github.com/jmylchreest/palettesniffer/internal/cli"

func main() {
	cli.Execute()
}
