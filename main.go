// Copyright © 2024 The ELPS authors

package main

import "github.com/Methuselah96/auto-lisp-parser/cmd"

func main() {
	cmd.Execute()
}
