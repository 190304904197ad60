package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mkanban/internal/domain"
	"github.com/emiliopalmerini/mkanban/internal/prompt"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Generate coding-agent prompts from tasks",
}

var promptGenerateCmd = &cobra.Command{
	Use:   "generate <task-id>",
	Short: "Turn a task into a prompt for a coding agent",
	Long: `Generate a prompt for a coding agent from a stored task.

The model may first ask clarifying questions. Each question is printed and
one line of input is read as its answer; an empty line leaves it unanswered.
Use --skip-questions to go straight to the prompt.

Examples:
  mkanban prompt generate <task-id>
  mkanban prompt generate <task-id> --plan-mode --test-coverage --save
  echo -e "Postgres\nNo" | mkanban prompt generate <task-id>`,
	Args: cobra.ExactArgs(1),
	RunE: runPromptGenerate,
}

var (
	promptParams        domain.PromptParameters
	promptSkipQuestions bool
	promptSave          bool
)

func init() {
	rootCmd.AddCommand(promptCmd)
	promptCmd.AddCommand(promptGenerateCmd)

	f := promptGenerateCmd.Flags()
	f.BoolVar(&promptParams.PlanMode, "plan-mode", false, "Ask the agent to plan before coding")
	f.BoolVar(&promptParams.TaskBreakdown, "task-breakdown", false, "Ask for a step-by-step breakdown")
	f.BoolVar(&promptParams.CodeOrganization, "code-organization", false, "Include code organization guidance")
	f.BoolVar(&promptParams.TestCoverage, "test-coverage", false, "Ask for tests covering the change")
	f.BoolVar(&promptSkipQuestions, "skip-questions", false, "Do not answer clarifying questions")
	f.BoolVar(&promptSave, "save", false, "Store the generated prompt on the task")
}

func runPromptGenerate(cmd *cobra.Command, args []string) error {
	return withApp(cmdContext(cmd), func(app *AppContext) error {
		c := cmdContext(cmd)
		out := cmd.OutOrStdout()

		task, err := app.Boards.GetTask(c, args[0])
		if err != nil {
			return err
		}

		session := prompt.NewSession(app.Generator, prompt.RequestFromTask(task, promptParams))
		questions, err := session.Start(c)
		if err != nil {
			return err
		}

		text := session.Prompt()
		if len(questions) > 0 {
			if promptSkipQuestions {
				text, err = session.Skip(c)
			} else {
				text, err = session.Answer(c, askQuestions(cmd.InOrStdin(), out, questions))
			}
			if err != nil {
				return err
			}
		}

		fmt.Fprintln(out, text)

		if promptSave {
			if _, err := app.Boards.SetPrompt(c, task.ID, text); err != nil {
				return fmt.Errorf("failed to save prompt: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved prompt to task %s\n", task.ID)
		}
		return nil
	})
}

// askQuestions prints each question and reads one line per answer. Input
// running out leaves the remaining questions unanswered.
func askQuestions(in io.Reader, out io.Writer, questions []domain.ClarifyingQuestion) map[string]string {
	answers := make(map[string]string, len(questions))
	scanner := bufio.NewScanner(in)
	for i, q := range questions {
		fmt.Fprintf(out, "[%d/%d] %s\n> ", i+1, len(questions), q.Question)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		if a := strings.TrimSpace(scanner.Text()); a != "" {
			answers[q.ID] = a
		}
	}
	fmt.Fprintln(out)
	return answers
}
