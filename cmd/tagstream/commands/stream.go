package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/tagstream/pkg/assistant"
	"github.com/haivivi/tagstream/pkg/cli"
)

var streamCmd = &cobra.Command{
	Use:   "stream [file]",
	Short: "Replay a message chunk by chunk and render blocks live",
	Long: `Replay a saved assistant message as if it were streaming and render
content blocks as they complete. Each block is printed once, as soon as
a later block supersedes it; the trailing block is printed after the
stream ends, marked partial if it was cut off.

Examples:
  tagstream stream message.txt
  tagstream stream --chunk 16 --delay 50ms message.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStream,
}

var (
	streamChunk int
	streamDelay time.Duration
)

func init() {
	streamCmd.Flags().IntVar(&streamChunk, "chunk", 32, "chunk size in bytes")
	streamCmd.Flags().DurationVar(&streamDelay, "delay", 0, "delay between chunks (e.g. 50ms)")

	rootCmd.AddCommand(streamCmd)
}

func runStream(cmd *cobra.Command, args []string) error {
	if streamChunk <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	data, err := readMessage(args)
	if err != nil {
		return err
	}
	vocab, err := loadVocabulary()
	if err != nil {
		return err
	}
	parser, err := assistant.NewParser(vocab)
	if err != nil {
		return err
	}

	session := assistant.NewSession(parser)
	styles := cli.NewStyles(cli.DefaultTheme)
	start := time.Now()

	printed := 0
	chunks := 0
	msg := string(data)
	for off := 0; off < len(msg); off += streamChunk {
		end := min(off+streamChunk, len(msg))
		blocks := session.Feed(msg[off:end])
		chunks++

		// Everything before the trailing block can no longer change.
		for printed < len(blocks)-1 {
			printBlock(styles, blocks[printed])
			printed++
		}
		if streamDelay > 0 {
			time.Sleep(streamDelay)
		}
	}

	blocks := session.Finish()
	for ; printed < len(blocks); printed++ {
		printBlock(styles, blocks[printed])
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "streamed %s in %d chunks, %s\n",
			cli.FormatBytes(int64(len(data))), chunks, cli.FormatDuration(time.Since(start)))
	}
	return nil
}

func printBlock(styles cli.Styles, b assistant.ContentBlock) {
	marker := ""
	if b.IsPartial() {
		marker = " " + styles.Partial.Render("[partial]")
	}
	switch v := b.(type) {
	case *assistant.TextContent:
		fmt.Println(styles.RenderHeading("text", "") + marker)
		fmt.Println(indent(v.Content))
	case *assistant.ToolUse:
		fmt.Println(styles.RenderHeading("tool_use "+v.Name, "") + marker)
		fmt.Println(styles.RenderKV("id", v.ID))
		for _, p := range v.Params {
			fmt.Println(styles.RenderKV(p.Name, paramValue(p)))
		}
	}
	fmt.Println()
}

func paramValue(p assistant.Param) string {
	if p.IsLeaf() {
		return p.Value
	}
	parts := make([]string, 0, len(p.Children))
	for _, c := range p.Children {
		parts = append(parts, c.Name+"="+paramValue(c))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = "  " + line
	}
	return strings.Join(lines, "\n")
}
