package main

import "github.com/mariokreitz/windows-winget-automatic-update/cmd/winget-upgrade/cmd"

func main() {
	cmd.Execute()
}
