package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"

	"github.com/haivivi/tagstream/pkg/assistant"
	"github.com/haivivi/tagstream/pkg/cli"
	"github.com/haivivi/tagstream/pkg/tagparse"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a complete assistant message into content blocks",
	Long: `Parse a complete assistant message into an ordered list of content
blocks. Reads from the file argument, or stdin when omitted.

Examples:
  tagstream parse message.txt
  tagstream parse --format json message.txt
  cat message.txt | tagstream parse
  tagstream parse --tree message.txt
  tagstream parse --query '.[] | select(.type == "tool_use") | .tool' message.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

var (
	parseFormat string
	parseOutput string
	parseTree   bool
	parseQuery  string
)

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "yaml", "output format: yaml, json")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "output file (default: stdout)")
	parseCmd.Flags().BoolVar(&parseTree, "tree", false, "show the raw tag tree instead of content blocks")
	parseCmd.Flags().StringVarP(&parseQuery, "query", "q", "", "jq expression applied to the result")

	rootCmd.AddCommand(parseCmd)
}

func readMessage(args []string) ([]byte, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	return data, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(parseFormat)
	if err != nil {
		return err
	}
	data, err := readMessage(args)
	if err != nil {
		return err
	}

	start := time.Now()

	var result any
	if parseTree {
		// Raw tag tree straight from the engine, with no tool vocabulary
		// restricting what counts as a tag.
		engine := tagparse.MustNew(tagparse.Options{AlwaysCreateTextNode: true})
		engine.Feed(string(data))
		result = engine.Map(engine.Flush().Nodes)
	} else {
		vocab, err := loadVocabulary()
		if err != nil {
			return err
		}
		parser, err := assistant.NewParser(vocab)
		if err != nil {
			return err
		}
		result = assistant.EventsFromBlocks(parser.Parse(string(data)))
	}

	if parseQuery != "" {
		result, err = applyQuery(parseQuery, result)
		if err != nil {
			return err
		}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "parsed %s in %s\n",
			cli.FormatBytes(int64(len(data))), cli.FormatDuration(time.Since(start)))
	}

	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   parseOutput,
	})
}

// applyQuery runs a jq expression over the result. The input is round-
// tripped through JSON so the query sees plain maps and slices.
func applyQuery(expr string, result any) (any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expr, err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, err
	}

	var out []any
	iter := query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("jq error: %w", err)
		}
		out = append(out, v)
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return out, nil
}
