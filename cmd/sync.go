/*
Copyright © 2025 The kamusi authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kamusiapp/kamusi/internal/app"
	"github.com/kamusiapp/kamusi/internal/entity"
)

const (
	syncModeKey     = "sync.mode"
	syncCategoryKey = "sync.category"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download a catalog slice into the offline mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mode, err := entity.ParseStudyMode(viper.GetString(syncModeKey))
		if err != nil {
			return err
		}
		category := viper.GetString(syncCategoryKey)

		c, cleanup, err := app.Initialize()
		if err != nil {
			return err
		}
		defer cleanup()

		if c.Sync == nil {
			return fmt.Errorf("no catalog configured: set CATALOG_DSN")
		}

		result, err := c.Sync.Sync(ctx, mode, category)
		if err != nil {
			return fmt.Errorf("sync %s/%s: %w", mode, category, err)
		}
		cmd.Printf("synced %s", result.Mode)
		if result.Category != "" {
			cmd.Printf("/%s", result.Category)
		}
		cmd.Printf(": %d fetched, %d accepted, %d dropped\n",
			result.Fetched, result.Accepted, result.Dropped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().String("mode", "sw", "study mode to download (sw or ko)")
	syncCmd.Flags().String("category", "", "restrict the download to one category")

	bindFlagToViper(syncModeKey, syncCmd.Flags().Lookup("mode"))
	bindFlagToViper(syncCategoryKey, syncCmd.Flags().Lookup("category"))
}
