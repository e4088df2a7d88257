// Content commands for the admin CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/emdneves/admin-panel/pkg/dynamiccontent"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage content items",
}

var contentListType string

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List content items",
	Long: `List content items, newest first.

With --type the items are rendered as rows of that type's schema, with
relation fields resolved to their target labels.

Example:
  admin content list
  admin content list --type 4f6b...`,
	RunE: runContentList,
}

var contentGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one content item",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentGet,
}

var contentCreateCmd = &cobra.Command{
	Use:   "create <type-id> <data-json>",
	Short: "Create a content item",
	Long: `Create a content item from inline JSON data.

Example:
  admin content create 4f6b... '{"title": "Hello", "price": 9.99}'`,
	Args: cobra.ExactArgs(2),
	RunE: runContentCreate,
}

var contentSetCmd = &cobra.Command{
	Use:   "set <id> <data-json>",
	Short: "Edit fields of a content item",
	Long: `Edit a content item. Submitted keys are coerced against the item's
schema and overwrite stored values; omitted keys keep theirs. If any value
fails validation the item is left untouched and its current row is printed.

Example:
  admin content set 9c1d... '{"price": "12.50"}'`,
	Args: cobra.ExactArgs(2),
	RunE: runContentSet,
}

var contentDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a content item",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentDelete,
}

func init() {
	contentListCmd.Flags().StringVar(&contentListType, "type", "", "filter by content type id")

	contentCmd.AddCommand(contentListCmd)
	contentCmd.AddCommand(contentGetCmd)
	contentCmd.AddCommand(contentCreateCmd)
	contentCmd.AddCommand(contentSetCmd)
	contentCmd.AddCommand(contentDeleteCmd)
}

func runContentList(cmd *cobra.Command, args []string) error {
	if contentListType != "" {
		typeID, err := uuid.Parse(contentListType)
		if err != nil {
			return fmt.Errorf("invalid content type id %q", contentListType)
		}
		return listTypedRows(cmd, typeID)
	}

	items, err := remote.ListContent(cmd.Context(), uuid.Nil)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(items)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tKEYS\tUPDATED")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			item.ID, item.ContentTypeID, len(item.Data),
			item.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// listTypedRows renders the items of one type as display rows, relation
// labels included.
func listTypedRows(cmd *cobra.Command, typeID uuid.UUID) error {
	eng, err := dynamiccontent.New(dynamiccontent.WithRemote(remote))
	if err != nil {
		return err
	}
	if err := eng.Bootstrap(cmd.Context()); err != nil {
		return err
	}
	if err := eng.SelectSchema(cmd.Context(), typeID); err != nil {
		return err
	}

	rows, err := eng.DisplayRows()
	if err != nil {
		return err
	}
	if flagJSON {
		return printJSON(rows)
	}

	schema, _ := eng.Schemas().Selected()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprint(w, "ID")
	for _, f := range schema.Fields {
		fmt.Fprintf(w, "\t%s", strings.ToUpper(f.Name))
	}
	fmt.Fprintln(w)
	for _, row := range rows {
		fmt.Fprintf(w, "%v", row[dynamiccontent.RowIDKey])
		for _, f := range schema.Fields {
			fmt.Fprintf(w, "\t%v", row[f.Name])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func runContentGet(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid content id %q", args[0])
	}

	item, err := remote.ReadContent(cmd.Context(), id)
	if err != nil {
		return err
	}
	return printJSON(item)
}

func runContentCreate(cmd *cobra.Command, args []string) error {
	typeID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid content type id %q", args[0])
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(args[1]), &data); err != nil {
		return fmt.Errorf("parse data: %w", err)
	}

	created, err := remote.CreateContent(cmd.Context(), dynamiccontent.CreateContentRequest{
		ContentTypeID: typeID,
		Data:          data,
	})
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(created)
	}
	fmt.Printf("created content %s\n", created.ID)
	return nil
}

func runContentSet(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid content id %q", args[0])
	}
	var edits map[string]any
	if err := json.Unmarshal([]byte(args[1]), &edits); err != nil {
		return fmt.Errorf("parse data: %w", err)
	}

	ctx := cmd.Context()
	item, err := remote.ReadContent(ctx, id)
	if err != nil {
		return err
	}

	eng, err := dynamiccontent.New(dynamiccontent.WithRemote(remote))
	if err != nil {
		return err
	}
	if err := eng.Bootstrap(ctx); err != nil {
		return err
	}
	if err := eng.SelectSchema(ctx, item.ContentTypeID); err != nil {
		return err
	}
	schema, ok := eng.Schemas().Selected()
	if !ok {
		return fmt.Errorf("content type %s not found", item.ContentTypeID)
	}

	prior := dynamiccontent.Flatten(schema, item)
	edited := make(dynamiccontent.Row, len(prior)+len(edits))
	for k, v := range prior {
		edited[k] = v
	}
	for k, v := range edits {
		edited[k] = v
	}

	result, err := eng.Rows().Reconcile(ctx, schema, edited, prior)
	if err != nil {
		fmt.Fprintf(os.Stderr, "edit rejected: %v\n", err)
		return printJSON(result.Row)
	}
	for _, issue := range result.Issues {
		fmt.Fprintln(os.Stderr, "note:", issue.String())
	}

	if flagJSON {
		return printJSON(result.Row)
	}
	fmt.Printf("updated content %s\n", id)
	return nil
}

func runContentDelete(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid content id %q", args[0])
	}

	if err := remote.DeleteContent(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("deleted content %s\n", id)
	return nil
}
