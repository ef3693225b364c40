package main

import "github.com/KaramelBytes/listing-insights/cmd"

func main() {
	cmd.Execute()
}
