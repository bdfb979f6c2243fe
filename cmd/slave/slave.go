package main

import (
	"k8s.io/component-base/logs"
	_ "k8s.io/component-base/logs/json/register"
	"os"
	"rtuslave/cmd/slave/app"
)

func main() {
	cmd := app.NewSlaveCmd()
	logs.InitLogs()
	defer logs.FlushLogs()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
