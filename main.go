package main

import "github.com/KaramelBytes/tabreport/cmd"

func main() {
	cmd.Execute()
}
