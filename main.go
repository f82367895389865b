package main

import (
	"github.com/umadb/umascope/cmd"
)

func main() {
	cmd.Execute()
}
