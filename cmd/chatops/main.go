package main

import (
	"fmt"
	"io"
	"os"

	"github.com/enescakir/emoji"
	"github.com/fatih/color"
	"github.com/gimlet-io/chatops/cmd/chatops/config"
	"github.com/gimlet-io/chatops/pkg/notifications"
	"github.com/gimlet-io/chatops/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	err := newApp(os.Stdout).Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", emoji.CrossMark, err.Error())
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "chatops",
		Version: version.String(),
		Usage:   "posts or updates a Slack notification about a CI workflow run",
		UsageText: `chatops [--layout compact]

     All inputs are read from environment variables, see SLACK_*, GITHUB_*, TITLE,
     PROJECT_NAME, ISSUE_ID, MESSAGE_TYPE and the *_STATUS variables.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "layout",
				Usage:   "notification layout, full or compact. NOTIFICATION_LAYOUT environment variable alternatively",
				EnvVars: []string{"NOTIFICATION_LAYOUT"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "file to seed the environment from",
				Value: ".env",
			},
		},
		Writer: out,
		Action: post,
		Commands: []*cli.Command{
			{
				Name:   "post",
				Usage:  "Posts the notification, or updates the message at SLACK_TIMESTAMP",
				Action: post,
			},
			{
				Name:   "preview",
				Usage:  "Prints the composed Slack message without sending it",
				Action: preview,
			},
		},
	}
}

func post(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	err = cfg.Validate()
	if err != nil {
		return err
	}

	notification, err := compose(cfg)
	if err != nil {
		return err
	}

	provider := notifications.NewSlackProvider(cfg.Slack.Token, cfg.Slack.APIURL)
	receipt, err := notifications.Dispatch(c.Context, provider, notification, cfg.Slack.Channel, cfg.Slack.Timestamp)
	if err != nil {
		return err
	}

	action := "posted to"
	if receipt.Updated {
		action = "updated in"
	}
	fmt.Fprintf(os.Stderr, "%v Message %s %s\n", emoji.CheckMarkButton, action, receipt.Channel)
	fmt.Fprintf(c.App.Writer, "%s %s\n", receipt.Channel, receipt.Timestamp)

	return nil
}

func preview(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	notification, err := compose(cfg)
	if err != nil {
		return err
	}

	payload, err := notifications.AsSlackJSON(notification)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(c.App.Writer, "%s\n%s\n", bold(notification.Title), payload)

	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	envFileErr := godotenv.Load(c.String("env-file"))

	cfg, err := config.Environ()
	if err != nil {
		return nil, err
	}
	if c.IsSet("layout") {
		cfg.Layout.Name = c.String("layout")
	}

	initLogging(cfg)

	if envFileErr != nil {
		logrus.Debugf("could not load %s file, relying on env vars", c.String("env-file"))
	}
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		fmt.Fprintln(os.Stderr, cfg.String())
	}

	return cfg, nil
}

func compose(cfg *config.Config) (*notifications.Notification, error) {
	layout, err := cfg.NotificationLayout()
	if err != nil {
		return nil, err
	}

	return notifications.NewComposer(layout).Compose(cfg.Request())
}

func initLogging(c *config.Config) {
	if c.Logging.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if c.Logging.Trace {
		logrus.SetLevel(logrus.TraceLevel)
	}
	if c.Logging.Text {
		logrus.SetFormatter(&logrus.TextFormatter{
			ForceColors:   c.Logging.Color,
			DisableColors: !c.Logging.Color,
		})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{
			PrettyPrint: c.Logging.Pretty,
		})
	}
}
