package main

import (
	"fmt"
	"os"

	"github.com/AhmedDS10/RaspberryPi-N8N-Cloudflare-Deployer/actions"

	"github.com/fatih/color"
	cli "github.com/jawher/mow.cli"
)

func main() {

	app := cli.App("n8n-deployer", "Provision n8n behind a Cloudflare Tunnel on a Raspberry Pi")

	app.Version("v version", "n8n-deployer 1.0.0")

	app.Command("install", "Run the (resumable) installation workflow", func(cmd *cli.Cmd) {

		cmd.Spec = "[--yes] [--domain] [--db-password] [--tunnel-name]"

		yes := cmd.BoolOpt("y yes", false, "Answer every confirmation with its default (requires --domain on a first run)")
		domainOpt := cmd.StringOpt("domain", "", "Public hostname for n8n (e.g. n8n.example.org)")
		password := cmd.StringOpt("db-password", "", "Database password (a built-in default is used otherwise)")
		tunnelName := cmd.StringOpt("tunnel-name", "", "Name of the Cloudflare Tunnel")

		cmd.Action = func() {
			if err := actions.InstallActionHandler(*domainOpt, *password, *tunnelName, *yes); err != nil {
				fail(err)
			}
		}
	})

	app.Command("backup", "Take a snapshot of the database, n8n data and tunnel config", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			cfg, err := actions.RequireConfig()
			if err != nil {
				fail(err)
			}
			if err := actions.BackupActionHandler(cfg); err != nil {
				fail(err)
			}
		}
	})

	app.Command("restore", "Restore a snapshot (destructive, replaces the live data)", func(cmd *cli.Cmd) {

		cmd.Spec = "DATE [--yes]"

		date := cmd.StringArg("DATE", "", "Snapshot date to restore (YYYY-MM-DD)")
		yes := cmd.BoolOpt("y yes", false, "Skip the confirmation prompt")

		cmd.Action = func() {
			cfg, err := actions.RequireConfig()
			if err != nil {
				fail(err)
			}
			if err := actions.RestoreActionHandler(cfg, *date, *yes); err != nil {
				fail(err)
			}
		}
	})

	app.Command("status", "Show the state of the containers, tunnel and backups", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			cfg, err := actions.RequireConfig()
			if err != nil {
				fail(err)
			}
			if err := actions.StatusActionHandler(cfg); err != nil {
				fail(err)
			}
		}
	})

	app.Command("start", "Start the n8n stack", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			cfg, err := actions.RequireConfig()
			if err != nil {
				fail(err)
			}
			if err := actions.StartActionHandler(cfg); err != nil {
				fail(err)
			}
		}
	})

	app.Command("stop", "Stop the n8n stack", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			cfg, err := actions.RequireConfig()
			if err != nil {
				fail(err)
			}
			if err := actions.StopActionHandler(cfg); err != nil {
				fail(err)
			}
		}
	})

	app.Command("logs", "Display logs of all services (or the specified service)", func(cmd *cli.Cmd) {

		cmd.Spec = "[SERVICE]"
		service := cmd.StringArg("SERVICE", "", "The Compose service to log (db or n8n)")

		cmd.Action = func() {
			cfg, err := actions.RequireConfig()
			if err != nil {
				fail(err)
			}
			if err := actions.LogsActionHandler(cfg, *service); err != nil {
				fail(err)
			}
		}
	})

	app.Run(os.Args)
}

func fail(err error) {
	fmt.Printf("\n %s %s\n", color.RedString("✗"), err)
	cli.Exit(1)
}
