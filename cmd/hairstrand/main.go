package main

import "github.com/unkn0wn-root/hairstrand/internal/cli"

func main() {
	cli.Execute()
}
