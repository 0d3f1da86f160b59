package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/jaxxstorm/buildtag"
)

// Version will be set by build process
var Version = "dev"

type CLI struct {
	Token      string `help:"GitHub token used to read and write tag refs" env:"INPUT_TOKEN"`
	Repository string `help:"Repository in owner/name form" env:"GITHUB_REPOSITORY"`
	SHA        string `name:"sha" help:"Commit the new tag points at" env:"GITHUB_SHA"`

	Prefix            string    `help:"Tag namespace, tags are named <prefix>-auto-v<version>-<build>" env:"INPUT_PREFIX"`
	Increment         string    `short:"i" default:"patch" help:"patch, bug, minor, feature, major, none, no change, build or build number only" env:"INPUT_INCREMENT"`
	BuildNumberMode   string    `default:"sequential" help:"Build number mode: sequential or date" env:"INPUT_BUILD_NUMBER_MODE"`
	BuildNumberReinit inputBool `help:"Reset the sequential build number to 1" env:"INPUT_BUILD_NUMBER_REINIT"`
	DryRun            inputBool `short:"n" help:"Compute outputs without creating or deleting tags" env:"INPUT_DRY_RUN"`

	Local           string `help:"Tag a local repository at this path instead of GitHub"`
	BuildNumberFile string `help:"Reuse the build number stored in this file, or store it there after a run" env:"INPUT_BUILD_NUMBER_FILE"`
	OutputFile      string `help:"File receiving step outputs" env:"GITHUB_OUTPUT"`
	EnvFile         string `help:"File receiving exported environment variables" env:"GITHUB_ENV"`

	Config      kong.ConfigFlag `help:"YAML configuration file"`
	LogLevel    string          `default:"info" enum:"debug,info,warn,error" help:"Log level"`
	LogFile     string          `help:"Also write JSON logs to this file"`
	JSON        bool            `short:"j" help:"Output as JSON"`
	ShowVersion bool            `help:"Show version information" name:"version"`
}

func main() {
	var cli CLI

	kong.Parse(&cli,
		kong.Name("buildtag"),
		kong.Description("Compute the next version and build number from auto-v tags and tag the commit"),
		kong.UsageOnError(),
		kong.Configuration(yamlConfig, ".buildtag.yml"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	err := cli.Run()
	if err != nil {
		if os.Getenv("GITHUB_ACTIONS") == "true" {
			fmt.Printf("::error::%v\n", err)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *CLI) Run() error {
	if c.ShowVersion {
		return c.showVersion()
	}

	if reused, err := c.reuseBuildNumber(); err != nil || reused {
		return err
	}

	runner, req, err := c.prepare()
	if err != nil {
		return err
	}

	logger, closeLogger, err := newLogger(c.LogLevel, c.LogFile, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLogger()
	runner.Logger = logger

	outcome, err := runner.Run(context.Background(), req)
	if err != nil {
		logger.Errorw("versioning failed", "error", err)
		return err
	}

	return c.report(outcome)
}

func (c *CLI) showVersion() error {
	versionInfo := map[string]string{
		"version": Version,
		"name":    "buildtag",
	}

	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(versionInfo)
	}

	fmt.Fprintf(os.Stdout, "buildtag version %s\n", Version)
	return nil
}

// prepare validates the configuration before any store is contacted
func (c *CLI) prepare() (*buildtag.Runner, buildtag.Request, error) {
	req := buildtag.Request{
		Repository: c.Repository,
		SHA:        c.SHA,
		Policy:     c.policy(),
		DryRun:     bool(c.DryRun),
	}

	if c.Local != "" {
		repo, err := buildtag.OpenRepository(c.Local)
		if err != nil {
			return nil, req, fmt.Errorf("opening repository %s: %w", c.Local, err)
		}

		req.SHA, err = buildtag.ResolveCommit(repo, c.SHA)
		if err != nil {
			return nil, req, err
		}
		if req.Repository == "" {
			req.Repository = c.Local
		}

		return &buildtag.Runner{Store: buildtag.NewGitStore(repo)}, req, nil
	}

	switch {
	case c.Token == "":
		return nil, req, buildtag.ErrMissingToken
	case c.Repository == "":
		return nil, req, buildtag.ErrMissingRepository
	case c.SHA == "":
		return nil, req, buildtag.ErrMissingSHA
	}
	if _, _, err := buildtag.ParseRepository(c.Repository); err != nil {
		return nil, req, err
	}

	client := buildtag.NewGitHubClient(c.Token)
	return &buildtag.Runner{Store: buildtag.NewGitHubStore(client)}, req, nil
}

func (c *CLI) policy() buildtag.Policy {
	return buildtag.Policy{
		Prefix:    strings.TrimSpace(c.Prefix),
		Increment: buildtag.Increment(c.Increment),
		BuildMode: buildtag.BuildMode(c.BuildNumberMode),
		Reinit:    bool(c.BuildNumberReinit),
	}
}

// reuseBuildNumber reports a build number generated by an earlier job
func (c *CLI) reuseBuildNumber() (bool, error) {
	if c.BuildNumberFile == "" {
		return false, nil
	}

	data, err := os.ReadFile(c.BuildNumberFile)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading build number file: %w", err)
	}

	build := strings.TrimSpace(string(data))
	fmt.Fprintf(os.Stderr, "Build number already generated in earlier jobs, using build number %s\n", build)

	if err := appendLines(c.EnvFile, []kv{{"BUILD_NUMBER", build}}); err != nil {
		return true, err
	}
	if err := appendLines(c.OutputFile, []kv{{"build_number", build}}); err != nil {
		return true, err
	}

	if c.JSON {
		return true, json.NewEncoder(os.Stdout).Encode(map[string]string{"build_number": build})
	}
	fmt.Fprintf(os.Stdout, "build_number=%s\n", build)
	return true, nil
}

func (c *CLI) report(outcome *buildtag.Outcome) error {
	if err := appendLines(c.OutputFile, stepOutputs(outcome)); err != nil {
		return err
	}
	if err := appendLines(c.EnvFile, envExports(outcome)); err != nil {
		return err
	}

	if c.BuildNumberFile != "" && !outcome.DryRun {
		if err := os.WriteFile(c.BuildNumberFile, []byte(outcome.BuildNumber), 0o644); err != nil {
			return fmt.Errorf("writing build number file: %w", err)
		}
	}

	if c.JSON {
		return json.NewEncoder(os.Stdout).Encode(outcome)
	}

	return writeLines(os.Stdout, stepOutputs(outcome))
}
