package main

import "github.com/vietddude/algowatch/internal/cli"

func main() {
	cli.Execute()
}
