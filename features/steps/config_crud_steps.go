//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"robot-dataset-curator/cmd"
	"robot-dataset-curator/infrastructure/config"

	"github.com/cucumber/godog"
)

type configCrudContext struct {
	tempDir    string
	configPath string
	config     *config.Config
	output     *bytes.Buffer
	err        error
}

var SharedConfigCrudContext = &configCrudContext{}

func InitializeConfigCrudScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigCrudContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-crud-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		testCtx.config = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedConfigCrudContext = &configCrudContext{}
		return c, nil
	})

	// Background
	ctx.Step(`^a config file exists with initial data$`, testCtx.aConfigFileExistsWithInitialData)

	// Recipient steps
	ctx.Step(`^I run config add recipient with key "([^"]*)" name "([^"]*)" and email "([^"]*)"$`, testCtx.iRunConfigAddRecipient)
	ctx.Step(`^recipient "([^"]*)" exists with name "([^"]*)" and email "([^"]*)"$`, testCtx.recipientExistsWithNameAndEmail)
	ctx.Step(`^I run config list recipients$`, testCtx.iRunConfigListRecipients)
	ctx.Step(`^I run config remove recipient "([^"]*)"$`, testCtx.iRunConfigRemoveRecipient)
	ctx.Step(`^I run config update recipient "([^"]*)" with email "([^"]*)"$`, testCtx.iRunConfigUpdateRecipientEmail)
	ctx.Step(`^the config should contain recipient "([^"]*)" with name "([^"]*)" and email "([^"]*)"$`, testCtx.theConfigShouldContainRecipient)
	ctx.Step(`^the config should not contain recipient "([^"]*)"$`, testCtx.theConfigShouldNotContainRecipient)

	// Camera steps
	ctx.Step(`^I run config add camera "([^"]*)"$`, testCtx.iRunConfigAddCamera)
	ctx.Step(`^camera "([^"]*)" exists$`, testCtx.cameraExists)
	ctx.Step(`^I run config remove camera "([^"]*)"$`, testCtx.iRunConfigRemoveCamera)
	ctx.Step(`^the config should contain camera "([^"]*)"$`, testCtx.theConfigShouldContainCamera)
	ctx.Step(`^the config should not contain camera "([^"]*)"$`, testCtx.theConfigShouldNotContainCamera)

	// Common assertions
	ctx.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	ctx.Step(`^the command should fail with "([^"]*)"$`, testCtx.theCommandShouldFailWith)
	ctx.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
}

func (c *configCrudContext) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	return nil
}

// --- Background ---

func (c *configCrudContext) aConfigFileExistsWithInitialData() error {
	c.config = &config.Config{
		Paths: config.PathsConfig{
			SourceDataset:   "/datasets/source",
			OutputDirectory: "/datasets/curated",
			ClipsDirectory:  "/datasets/clips",
		},
		Email: config.EmailConfig{
			FromName:    "Data Team",
			FromAddress: "data@example.com",
			Recipients:  map[string]config.RecipientConfig{},
		},
	}
	return config.Save(c.config, c.configPath)
}

// --- Recipient steps ---

func (c *configCrudContext) iRunConfigAddRecipient(key, name, email string) error {
	c.err = cmd.RunConfigAddWithDependencies(c.config, c.configPath, "recipient", key, name, email, c.output)
	return nil
}

func (c *configCrudContext) recipientExistsWithNameAndEmail(key, name, email string) error {
	c.config.Email.Recipients[key] = config.RecipientConfig{Name: name, Address: email}
	return config.Save(c.config, c.configPath)
}

func (c *configCrudContext) iRunConfigListRecipients() error {
	c.err = cmd.RunConfigListWithDependencies(c.config, c.configPath, "recipients", c.output)
	return nil
}

func (c *configCrudContext) iRunConfigRemoveRecipient(key string) error {
	c.err = cmd.RunConfigRemoveWithDependencies(c.config, c.configPath, "recipient", key, c.output)
	return nil
}

func (c *configCrudContext) iRunConfigUpdateRecipientEmail(key, email string) error {
	c.err = cmd.RunConfigUpdateWithDependencies(c.config, c.configPath, "recipient", key, "", email, c.output)
	return nil
}

func (c *configCrudContext) theConfigShouldContainRecipient(key, name, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	rc, ok := c.config.Email.Recipients[key]
	if !ok {
		return fmt.Errorf("recipient %q not found in config", key)
	}
	if rc.Name != name || rc.Address != email {
		return fmt.Errorf("recipient %q is %s <%s>, expected %s <%s>", key, rc.Name, rc.Address, name, email)
	}
	return nil
}

func (c *configCrudContext) theConfigShouldNotContainRecipient(key string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	if _, ok := c.config.Email.Recipients[key]; ok {
		return fmt.Errorf("recipient %q still present in config", key)
	}
	return nil
}

// --- Camera steps ---

func (c *configCrudContext) iRunConfigAddCamera(name string) error {
	c.err = cmd.RunConfigAddWithDependencies(c.config, c.configPath, "camera", name, "", "", c.output)
	return nil
}

func (c *configCrudContext) cameraExists(name string) error {
	c.config.Cameras = append(c.config.Cameras, name)
	return config.Save(c.config, c.configPath)
}

func (c *configCrudContext) iRunConfigRemoveCamera(name string) error {
	c.err = cmd.RunConfigRemoveWithDependencies(c.config, c.configPath, "camera", name, c.output)
	return nil
}

func (c *configCrudContext) theConfigShouldContainCamera(name string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	for _, camera := range c.config.Cameras {
		if camera == name {
			return nil
		}
	}
	return fmt.Errorf("camera %q not found in config", name)
}

func (c *configCrudContext) theConfigShouldNotContainCamera(name string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	for _, camera := range c.config.Cameras {
		if camera == name {
			return fmt.Errorf("camera %q still present in config", name)
		}
	}
	return nil
}

// --- Common assertions ---

func (c *configCrudContext) theCommandShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("command failed: %v", c.err)
	}
	return nil
}

func (c *configCrudContext) theCommandShouldFailWith(message string) error {
	if c.err == nil {
		return fmt.Errorf("expected command to fail with %q", message)
	}
	if !strings.Contains(c.err.Error(), message) {
		return fmt.Errorf("error %q does not contain %q", c.err.Error(), message)
	}
	return nil
}

func (c *configCrudContext) theOutputShouldContain(text string) error {
	if !strings.Contains(c.output.String(), text) {
		return fmt.Errorf("output does not contain %q:\n%s", text, c.output.String())
	}
	return nil
}
