package protocol

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/datazip-inc/bqsink/constants"
	"github.com/datazip-inc/bqsink/utils"
	"github.com/datazip-inc/bqsink/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath string
	rowsPath   string
	schemaPath string
	streamMode bool
	writers    int
	batchSize  int

	commands = []*cobra.Command{}
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "bqsink",
	Short: "root command",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		viper.SetDefault(constants.LogFolder, os.TempDir())
		if configPath != "not-set" {
			viper.Set(constants.ConfigFolder, filepath.Dir(configPath))
			viper.Set(constants.LogFolder, filepath.Dir(configPath))
		}

		// logger uses LOG_FOLDER
		logger.Init()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		if ok := utils.IsValidSubcommand(commands, args[0]); !ok {
			return fmt.Errorf("'%s' is an invalid command. Use 'bqsink --help' to display usage guide", args[0])
		}
		return nil
	},
}

func CreateRootCommand() *cobra.Command {
	RootCmd.AddCommand(commands...)
	return RootCmd
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "", "not-set", "(Required) Config for bqsink")
	RootCmd.PersistentFlags().StringVarP(&schemaPath, "schema", "", "", "(Optional) Schema override file (JSON or YAML)")

	commands = append(commands, specCmd, checkCmd, loadCmd)
}
