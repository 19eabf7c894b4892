package commands

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

//go:embed templates/*
var templatesFS embed.FS

var (
	newInteractive bool
	newPython      string
	newDescription string
)

// validateProjectName validates project name with security checks
func validateProjectName(name string) error {
	name = strings.TrimSpace(name)

	// Check length
	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}

	// Check for absolute paths
	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}

	// Only allow alphanumeric, dash, and underscore; must start with a
	// letter so the derived Python module name is importable
	matched, _ := regexp.MatchString(`^[a-zA-Z][a-zA-Z0-9_-]*$`, name)
	if !matched {
		return fmt.Errorf("project name must start with a letter and contain only letters, numbers, dashes, and underscores")
	}

	return nil
}

// NewNewCommand creates the new command
func NewNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Create a new Python starter project",
		Long: `Create a new Python starter project: a manifest with linter,
formatter, and type checker configuration, a hello entry point, and
workflow docs that tell a human or coding assistant how to run the
check pipeline.

If no project name is provided, you will be prompted to enter one.

Examples:
  slate new my-service
  slate new my-service --python 3.13
  slate new --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: runNew,
	}

	cmd.Flags().BoolVarP(&newInteractive, "interactive", "i", false, "Interactive project setup with prompts")
	cmd.Flags().StringVar(&newPython, "python", "3.12", "Minimum Python version")
	cmd.Flags().StringVar(&newDescription, "description", "", "Project description for the manifest")

	return cmd
}

func runNew(cmd *cobra.Command, args []string) error {
	var projectName string
	if len(args) > 0 {
		projectName = args[0]
	}

	if newInteractive || projectName == "" {
		if err := promptProjectDetails(&projectName); err != nil {
			return err
		}
	}

	if err := validateProjectName(projectName); err != nil {
		return err
	}

	projectPath := filepath.Join(".", projectName)
	if _, err := os.Stat(projectPath); err == nil {
		return fmt.Errorf("directory %s already exists", projectName)
	}

	moduleName := strings.ReplaceAll(strings.ToLower(projectName), "-", "_")
	data := map[string]string{
		"ProjectName":   projectName,
		"ModuleName":    moduleName,
		"PythonVersion": newPython,
		"RuffTarget":    "py" + strings.ReplaceAll(newPython, ".", ""),
		"Description":   newDescription,
	}

	// Create directory structure
	dirs := []string{
		projectPath,
		filepath.Join(projectPath, "src", moduleName),
		filepath.Join(projectPath, "tests"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Create files from templates
	files := map[string]string{
		"pyproject.toml": "templates/pyproject.toml.tmpl",
		"slate.yml":      "templates/slate.yml.tmpl",
		".gitignore":     "templates/gitignore.tmpl",
		"README.md":      "templates/readme.md.tmpl",
		"AGENTS.md":      "templates/agents.md.tmpl",
		"CLAUDE.md":      "templates/claude.md.tmpl",
		filepath.Join("src", moduleName, "__init__.py"): "templates/init.py.tmpl",
		filepath.Join("src", moduleName, "__main__.py"): "templates/main.py.tmpl",
		filepath.Join("tests", "test_main.py"):          "templates/test_main.py.tmpl",
	}

	for destPath, tmplPath := range files {
		if err := renderTemplate(filepath.Join(projectPath, destPath), tmplPath, data); err != nil {
			return err
		}
	}

	// Print success message
	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)
	if rootNoColor {
		successColor.DisableColor()
		infoColor.DisableColor()
	}

	out := cmd.OutOrStdout()
	successColor.Fprintf(out, "\n✓ Created project: %s\n\n", projectName)
	infoColor.Fprintln(out, "Get started:")
	fmt.Fprintf(out, "  cd %s\n", projectName)
	fmt.Fprintln(out, "  slate sync")
	fmt.Fprintln(out, "  slate run")
	fmt.Fprintln(out, "  slate check")
	fmt.Fprintln(out)

	return nil
}

func promptProjectDetails(projectName *string) error {
	if *projectName == "" {
		prompt := &survey.Input{
			Message: "Project name:",
		}
		if err := survey.AskOne(prompt, projectName, survey.WithValidator(func(ans interface{}) error {
			return validateProjectName(ans.(string))
		})); err != nil {
			return err
		}
	}

	if newInteractive {
		pythonPrompt := &survey.Select{
			Message: "Minimum Python version:",
			Options: []string{"3.11", "3.12", "3.13"},
			Default: newPython,
		}
		if err := survey.AskOne(pythonPrompt, &newPython); err != nil {
			return err
		}

		descPrompt := &survey.Input{
			Message: "Description (optional):",
		}
		if err := survey.AskOne(descPrompt, &newDescription); err != nil {
			return err
		}
	}

	return nil
}

func renderTemplate(destPath, tmplPath string, data map[string]string) error {
	tmplContent, err := templatesFS.ReadFile(tmplPath)
	if err != nil {
		return fmt.Errorf("failed to read template %s: %w", tmplPath, err)
	}

	tmpl, err := template.New(filepath.Base(tmplPath)).Parse(string(tmplContent))
	if err != nil {
		return fmt.Errorf("failed to parse template %s: %w", tmplPath, err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destPath, err)
	}

	if err := tmpl.Execute(f, data); err != nil {
		f.Close()
		return fmt.Errorf("failed to execute template %s: %w", tmplPath, err)
	}

	return f.Close()
}
