// Package client contains Cobra CLI commands for UDMF.
package client

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

// NewDataCommand constructs the `data` command group and subcommands.
func NewDataCommand(baseURL BaseURLFunc) *cobra.Command {
	dataCmd := &cobra.Command{Use: "data", Short: "Unified data operations"}

	dataCmd.AddCommand(
		newDataPutCommand(baseURL),
		newDataGetCommand(baseURL),
		newDataSummaryCommand(baseURL),
		newDataUpdateCommand(baseURL),
		newDataDeleteCommand(baseURL),
		newDataListCommand(baseURL),
		newDataSyncCommand(baseURL),
		newDataClearCommand(baseURL),
	)

	return dataCmd
}

// recordsFromFlags builds wire records from the convenience flags plus
// an optional raw JSON array.
func recordsFromFlags(texts, urls []string, recordsJSON string) ([]map[string]any, error) {
	var records []map[string]any
	for _, t := range texts {
		records = append(records, map[string]any{"type": "plain-text", "content": t})
	}
	for _, u := range urls {
		records = append(records, map[string]any{"type": "hyperlink", "url": u})
	}
	if recordsJSON != "" {
		var extra []map[string]any
		if err := json.Unmarshal([]byte(recordsJSON), &extra); err != nil {
			return nil, fmt.Errorf("invalid --records: %w", err)
		}
		records = append(records, extra...)
	}
	return records, nil
}

// newDataPutCommand constructs the `data put` subcommand.
func newDataPutCommand(baseURL BaseURLFunc) *cobra.Command {
	putCmd := &cobra.Command{
		Use:   "put",
		Short: "Store a unified data object",
		RunE: func(cmd *cobra.Command, _ []string) error {
			storeID, _ := cmd.Flags().GetString("store")
			intention, _ := cmd.Flags().GetString("intention")
			bundle, _ := cmd.Flags().GetString("bundle")
			group, _ := cmd.Flags().GetString("group")
			private, _ := cmd.Flags().GetBool("private")
			texts, _ := cmd.Flags().GetStringArray("text")
			urls, _ := cmd.Flags().GetStringArray("url")
			recordsJSON, _ := cmd.Flags().GetString("records")

			records, err := recordsFromFlags(texts, urls, recordsJSON)
			if err != nil {
				return err
			}
			body := map[string]any{
				"storeId":    storeID,
				"intention":  intention,
				"bundleName": bundle,
				"groupId":    group,
				"isPrivate":  private,
				"records":    records,
			}
			return postJSON(baseURL(), "/v1/data/put", body, cmd.OutOrStdout())
		},
	}
	putCmd.Flags().String("store", "", "Store ID (default drag)")
	putCmd.Flags().StringP("intention", "i", "drag", "Intention")
	putCmd.Flags().StringP("bundle", "b", "", "Bundle name")
	putCmd.Flags().String("group", "", "Group ID (minted when empty)")
	putCmd.Flags().Bool("private", false, "Mark the object private")
	putCmd.Flags().StringArray("text", nil, "Plain text record (repeatable)")
	putCmd.Flags().StringArray("url", nil, "Hyperlink record (repeatable)")
	putCmd.Flags().String("records", "", "Raw records JSON array")
	return putCmd
}

// newDataGetCommand constructs the `data get` subcommand.
func newDataGetCommand(baseURL BaseURLFunc) *cobra.Command {
	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Read a unified data object",
		RunE: func(cmd *cobra.Command, _ []string) error {
			storeID, _ := cmd.Flags().GetString("store")
			key, _ := cmd.Flags().GetString("key")
			q := url.Values{"store": {storeID}, "key": {key}}
			return getJSON(baseURL()+"/v1/data/get?"+q.Encode(), cmd.OutOrStdout())
		},
	}
	getCmd.Flags().String("store", "", "Store ID (default drag)")
	getCmd.Flags().StringP("key", "k", "", "Object key (udmf://...)")
	return getCmd
}

// newDataSummaryCommand constructs the `data summary` subcommand.
func newDataSummaryCommand(baseURL BaseURLFunc) *cobra.Command {
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize record sizes by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			storeID, _ := cmd.Flags().GetString("store")
			key, _ := cmd.Flags().GetString("key")
			q := url.Values{"store": {storeID}, "key": {key}}
			return getJSON(baseURL()+"/v1/data/summary?"+q.Encode(), cmd.OutOrStdout())
		},
	}
	summaryCmd.Flags().String("store", "", "Store ID (default drag)")
	summaryCmd.Flags().StringP("key", "k", "", "Object key (udmf://...)")
	return summaryCmd
}

// newDataUpdateCommand constructs the `data update` subcommand.
func newDataUpdateCommand(baseURL BaseURLFunc) *cobra.Command {
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Replace a stored object's records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			storeID, _ := cmd.Flags().GetString("store")
			key, _ := cmd.Flags().GetString("key")
			texts, _ := cmd.Flags().GetStringArray("text")
			urls, _ := cmd.Flags().GetStringArray("url")
			recordsJSON, _ := cmd.Flags().GetString("records")

			records, err := recordsFromFlags(texts, urls, recordsJSON)
			if err != nil {
				return err
			}
			body := map[string]any{"storeId": storeID, "key": key, "records": records}
			return postJSON(baseURL(), "/v1/data/update", body, cmd.OutOrStdout())
		},
	}
	updateCmd.Flags().String("store", "", "Store ID (default drag)")
	updateCmd.Flags().StringP("key", "k", "", "Object key (udmf://...)")
	updateCmd.Flags().StringArray("text", nil, "Plain text record (repeatable)")
	updateCmd.Flags().StringArray("url", nil, "Hyperlink record (repeatable)")
	updateCmd.Flags().String("records", "", "Raw records JSON array")
	return updateCmd
}

// newDataDeleteCommand constructs the `data delete` subcommand.
func newDataDeleteCommand(baseURL BaseURLFunc) *cobra.Command {
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete unified data objects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			storeID, _ := cmd.Flags().GetString("store")
			keys, _ := cmd.Flags().GetStringArray("key")
			body := map[string]any{"storeId": storeID, "keys": keys}
			return postJSON(baseURL(), "/v1/data/delete", body, cmd.OutOrStdout())
		},
	}
	deleteCmd.Flags().String("store", "", "Store ID (default drag)")
	deleteCmd.Flags().StringArrayP("key", "k", nil, "Object key (repeatable)")
	return deleteCmd
}

// newDataListCommand constructs the `data list` subcommand.
func newDataListCommand(baseURL BaseURLFunc) *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List objects under a key prefix",
		RunE: func(cmd *cobra.Command, _ []string) error {
			storeID, _ := cmd.Flags().GetString("store")
			prefix, _ := cmd.Flags().GetString("prefix")
			q := url.Values{"store": {storeID}, "prefix": {prefix}}
			return getJSON(baseURL()+"/v1/data/list?"+q.Encode(), cmd.OutOrStdout())
		},
	}
	listCmd.Flags().String("store", "", "Store ID (default drag)")
	listCmd.Flags().StringP("prefix", "p", "", "Key prefix (default udmf://)")
	return listCmd
}

// newDataSyncCommand constructs the `data sync` subcommand.
func newDataSyncCommand(baseURL BaseURLFunc) *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Push store data to remote devices",
		RunE: func(cmd *cobra.Command, _ []string) error {
			storeID, _ := cmd.Flags().GetString("store")
			devices, _ := cmd.Flags().GetStringArray("device")
			body := map[string]any{"storeId": storeID, "devices": devices}
			return postJSON(baseURL(), "/v1/data/sync", body, cmd.OutOrStdout())
		},
	}
	syncCmd.Flags().String("store", "", "Store ID (default drag)")
	syncCmd.Flags().StringArrayP("device", "d", nil, "Target device ID (repeatable)")
	return syncCmd
}

// newDataClearCommand constructs the `data clear` subcommand.
func newDataClearCommand(baseURL BaseURLFunc) *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every object in a store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			storeID, _ := cmd.Flags().GetString("store")
			body := map[string]any{"storeId": storeID}
			return postJSON(baseURL(), "/v1/data/clear", body, cmd.OutOrStdout())
		},
	}
	clearCmd.Flags().String("store", "", "Store ID (default drag)")
	return clearCmd
}
