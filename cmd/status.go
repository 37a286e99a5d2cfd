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
	"time"

	"github.com/spf13/cobra"

	"github.com/kamusiapp/kamusi/internal/app"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show offline mirror contents and local study state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c, cleanup, err := app.Initialize()
		if err != nil {
			return err
		}
		defer cleanup()

		status, err := c.Mirror.Status(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("mirror: %d cached records\n", status.TotalCount)
		for mode, count := range status.PerModeCounts {
			cmd.Printf("  %s: %d\n", mode, count)
		}
		if status.LastUpdated != nil {
			at := time.UnixMilli(*status.LastUpdated).Format(time.RFC3339)
			cmd.Printf("  last synced: %s\n", at)
		}

		if err := c.Hydrate(ctx); err != nil {
			return err
		}
		state := c.Store.State()
		cmd.Printf("local: %d items across %d decks, %d wrong notes\n",
			len(state.Items), len(state.Decks), len(state.Wrong))
		due := c.Study.DueItems(state, time.Now().UnixMilli())
		cmd.Printf("  due for review: %d\n", len(due))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
