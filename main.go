package main

import (
	"github.com/hotosm/scaleodm-go/cmd"
)

func main() {
	cmd.Execute()
}
