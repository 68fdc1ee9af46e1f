package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mohitkumar/workflower/logger"
	"github.com/mohitkumar/workflower/model"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadDefinitions reads every .yaml, .yml and .json file of dir as a workflow
// definition.
func LoadDefinitions(dir string) ([]model.Workflow, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var workflows []model.Workflow
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		path := filepath.Join(dir, entry.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var wf model.Workflow
		// JSON is a subset of YAML
		if err := yaml.Unmarshal(b, &wf); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		workflows = append(workflows, wf)
	}
	return workflows, nil
}

// Register validates and saves every definition of dir.
func Register(service MetadataService, dir string) error {
	workflows, err := LoadDefinitions(dir)
	if err != nil {
		return err
	}
	for _, wf := range workflows {
		if err := service.ValidateFlow(wf); err != nil {
			return fmt.Errorf("workflow %s: %w", wf.Name, err)
		}
		if err := service.GetMetadataStorage().SaveWorkflowDefinition(wf); err != nil {
			return err
		}
		logger.Info("workflow definition loaded", zap.String("workflow", wf.Name))
	}
	return nil
}
