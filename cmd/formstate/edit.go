package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formstate/internal/dashboard"
	"github.com/goliatone/go-formstate/internal/savebar"
	"github.com/goliatone/go-formstate/pkg/confirm"
	"github.com/goliatone/go-formstate/pkg/formset"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
)

const collectionChoices = 50

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a record in the terminal",
}

var editProductCmd = &cobra.Command{
	Use:   "product [id]",
	Short: "Edit a product, its attributes and collections",
	Args:  cobra.ExactArgs(1),
	RunE:  runEditProduct,
}

var editCollectionCmd = &cobra.Command{
	Use:   "collection [id]",
	Short: "Edit a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runEditCollection,
}

func init() {
	editCmd.AddCommand(editProductCmd, editCollectionCmd)
}

func pageOptions(bridge *savebar.Bridge) []dashboard.Option {
	return []dashboard.Option{
		dashboard.WithLogger(logger),
		dashboard.WithButtonOptions(confirm.WithResetDelay(cfg.Button.ResetDelay)),
		dashboard.WithOnButton(bridge.Notify),
	}
}

func runEditProduct(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx, cfg.Store, false)
	if err != nil {
		return err
	}
	defer closeStore()

	bridge := savebar.NewBridge()
	page, err := dashboard.OpenProductPage(ctx, store, args[0], pageOptions(bridge)...)
	if err != nil {
		return err
	}
	defer page.Close()

	editor := tui.NewEditor()
	err = editor.EditForm(ctx, page.Fields(), page.Form().Data(), page.Change)
	if err == nil {
		err = editor.EditFormset(ctx, page.Attributes(), func(id string, values []string) error {
			return page.ChangeAttribute(id, values)
		})
	}
	if err == nil {
		err = editCollections(ctx, editor, page)
	}
	if err != nil {
		if tui.IsAborted(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "edit aborted")
			return nil
		}
		return err
	}
	return runSaveBar(ctx, cmd.OutOrStdout(), page, page.Form().HasChanged(), bridge)
}

func editCollections(ctx context.Context, editor *tui.Editor, page *dashboard.ProductUpdatePage) error {
	field, err := page.CollectionField(ctx, collectionChoices)
	if err != nil {
		return err
	}
	current, _ := page.Form().Value(dashboard.FieldCollections)
	return editor.EditField(ctx, field, current, func(value any) error {
		ids, ok := formset.Strings(value)
		if !ok {
			return fmt.Errorf("unsupported value %T", value)
		}
		return page.SetCollections(ids)
	})
}

func runEditCollection(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx, cfg.Store, false)
	if err != nil {
		return err
	}
	defer closeStore()

	bridge := savebar.NewBridge()
	page, err := dashboard.OpenCollectionPage(ctx, store, args[0], pageOptions(bridge)...)
	if err != nil {
		return err
	}
	defer page.Close()

	editor := tui.NewEditor()
	if err := editor.EditForm(ctx, page.Fields(), page.Form().Data(), page.Change); err != nil {
		if tui.IsAborted(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "edit aborted")
			return nil
		}
		return err
	}
	return runSaveBar(ctx, cmd.OutOrStdout(), page, page.Form().HasChanged(), bridge)
}

func runSaveBar(ctx context.Context, out io.Writer, page savebar.Page, changed bool, bridge *savebar.Bridge) error {
	if !changed {
		fmt.Fprintln(out, "no changes")
		return nil
	}
	final, err := tea.NewProgram(
		savebar.New(ctx, page, savebar.WithBridge(bridge)),
		tea.WithContext(ctx),
	).Run()
	if err != nil {
		return err
	}
	m, ok := final.(savebar.Model)
	if !ok {
		return nil
	}
	res, err := m.Result()
	switch {
	case err != nil:
		return err
	case res == nil:
		fmt.Fprintln(out, "not saved")
	case res.OK():
		fmt.Fprintln(out, "saved")
	default:
		fmt.Fprintln(out, "not saved: the record has errors")
	}
	return nil
}
