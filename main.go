package main

import "github.com/Alijeyrad/pms_backend/cmd"

func main() {
	cmd.Execute()
}
