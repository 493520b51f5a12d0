package commands

import (
	"github.com/spf13/cobra"

	"github.com/haivivi/tagstream/pkg/assistant"
)

var (
	// Global flags
	verbose   bool
	vocabPath string
)

var rootCmd = &cobra.Command{
	Use:   "tagstream",
	Short: "Parse tag-structured assistant messages into content blocks",
	Long: `tagstream - incremental parser for tag-structured assistant messages.

Assistant output mixes prose with tool invocations written as tags:

  I'll read that file.
  <read_file>
  <path>src/main.go</path>
  </read_file>

tagstream splits such a message into an ordered list of content blocks
(text and tool_use) and keeps the split stable while the message is
still streaming.

The tool vocabulary is loaded from a YAML file (--vocab). Without one, a
built-in demo vocabulary with common file and shell tools is used.

Examples:
  # Parse a saved message into blocks
  tagstream parse message.txt
  tagstream parse --format json --vocab tools.yaml message.txt

  # Replay a message as a stream and watch blocks form
  tagstream stream --chunk 16 --delay 50ms message.txt

  # Run the WebSocket dev server
  tagstream serve --addr :8087`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&vocabPath, "vocab", "", "tool vocabulary YAML file (default: built-in demo vocabulary)")
}

// demoVocabulary covers the common file and shell tools, so the CLI is
// usable without a vocabulary file.
func demoVocabulary() *assistant.Vocabulary {
	return assistant.MustNewVocabulary([]assistant.ToolSpec{
		{Name: "read_file", Params: []string{"path"}},
		{Name: "write_to_file", Params: []string{"path", "content"}, Opaque: []string{"content"}},
		{Name: "execute_command", Params: []string{"command"}, Opaque: []string{"command"}},
		{Name: "search_files", Params: []string{"path", "regex"}, Opaque: []string{"regex"}},
		{Name: "list_files", Params: []string{"path", "recursive"}},
		{Name: "ask_followup_question", Params: []string{"question"}},
		{Name: "attempt_completion", Params: []string{"result", "command"}, Opaque: []string{"command"}},
		{Name: "use_mcp_tool", Params: []string{"server_name", "tool_name", "arguments"}},
	})
}

// loadVocabulary resolves the --vocab flag.
func loadVocabulary() (*assistant.Vocabulary, error) {
	if vocabPath == "" {
		return demoVocabulary(), nil
	}
	return assistant.LoadVocabularyFile(vocabPath)
}
