package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thorn-jmh/errorst"
	"go.uber.org/zap"

	"uniongen/pkg/uniongen"
	"uniongen/pkg/unionspec"
)

var (
	outputDir   string
	packageName string
)

var logger *zap.Logger

var rootCmd = &cobra.Command{
	Use:   "uniongen [-o <outputDir>] [-p <package name>] <definition...>",
	Short: "Generate tagged union code from union definition files",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}

		for _, defPath := range args {
			if err := gen(defPath); err != nil {
				logger.Error("generation failed",
					zap.String("input", defPath),
					zap.Error(err))
			}
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", ".", "output directory")
	rootCmd.PersistentFlags().StringVarP(&packageName, "package", "p", "", "package name, defaults to the output directory's name")
}

// initConfig lets a .uniongen.yaml file or UNIONGEN_* environment
// variables supply defaults for flags the user did not pass.
func initConfig() {
	viper.SetConfigName(".uniongen")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("UNIONGEN")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	if !rootCmd.PersistentFlags().Changed("output") && viper.IsSet("output") {
		outputDir = viper.GetString("output")
	}
	if !rootCmd.PersistentFlags().Changed("package") && viper.IsSet("package") {
		packageName = viper.GetString("package")
	}
}

// gen runs the full pipeline for one definition file. Each input is
// independent; an error aborts only its own file.
func gen(defPath string) error {
	src, err := os.ReadFile(defPath)
	if err != nil {
		return errorst.Wrap(err, "cannot read %s", defPath)
	}

	u, err := unionspec.Parse(defPath, string(src))
	if err != nil {
		return errorst.Wrap(err, "cannot parse %s", defPath)
	}

	pkg := packageName
	if pkg == "" {
		abs, err := filepath.Abs(outputDir)
		if err != nil {
			return errorst.Wrap(err, "cannot resolve output directory %s", outputDir)
		}
		pkg = filepath.Base(abs)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errorst.Wrap(err, "cannot create output directory %s", outputDir)
	}
	return uniongen.New(u, logger).Save(outputDir, pkg)
}
