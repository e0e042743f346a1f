// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker

package main

import (
	"fmt"
	"os"

	"github.com/kazwalker/elmterm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
