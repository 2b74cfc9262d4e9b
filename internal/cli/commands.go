package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-privacy-redactor/internal/redactor"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
)

// newRedactCommand 创建 redact 命令
func newRedactCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "redact <input> [output]",
		Short: "脱敏 .txt 或 .docx 文件",
		Long: `脱敏文件并写出副本，原文件不会被修改。

未指定输出路径时写到输入文件旁的 <文件名>_redacted<扩展名>。

Examples:
  redactor redact 出院小结.docx
  redactor redact notes.txt out/notes.txt --strategy hybrid --save-entities`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, cfg, log, err := o.setup(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			output := ""
			if len(args) == 2 {
				output = args[1]
			}

			res, err := r.RedactFile(cmd.Context(), args[0], output)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			pterm.Success.WithWriter(out).Printfln("已写出 %s（%d 个实体，策略 %s）",
				res.OutputPath, len(res.Entities), r.Strategy())

			if cfg.SaveEntities {
				path, err := entity.SaveSidecar(res.OutputPath, res.Entities)
				if err != nil {
					return fmt.Errorf("保存实体失败: %w", err)
				}
				pterm.Info.WithWriter(out).Printfln("实体已保存到 %s", path)
			}
			if len(res.Entities) == 0 {
				pterm.Warning.WithWriter(out).Println("未发现任何隐私实体")
			}

			log.Debug("redact command finished", zap.String("run_id", res.RunID))
			return nil
		},
	}
}

// newInspectCommand 创建 inspect 命令
func newInspectCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file|-]",
		Short: "只列出识别到的实体，不写出文件",
		Long: `列出识别到的实体。参数为 - 或省略时从标准输入读取文本。

Examples:
  redactor inspect 出院小结.docx
  cat notes.txt | redactor inspect`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, log, err := o.setup(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			var found []entity.Entity
			if len(args) == 0 || args[0] == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("读取标准输入失败: %w", err)
				}
				found, err = r.Entities(cmd.Context(), string(data))
				if err != nil {
					return err
				}
			} else {
				found, err = r.InspectFile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
			}

			renderEntityTable(cmd.OutOrStdout(), found)
			return nil
		},
	}
}

// newTextCommand 创建 text 命令
func newTextCommand(o *rootOptions) *cobra.Command {
	var showEntities bool

	cmd := &cobra.Command{
		Use:   "text <text>",
		Short: "脱敏一段文本并输出",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _, log, err := o.setup(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			res, err := r.RedactText(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, highlightPlaceholders(res.Text, res.Entities))
			if showEntities {
				renderEntityTable(out, res.Entities)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showEntities, "entities", false, "同时输出实体表")
	return cmd
}

// newStrategiesCommand 创建 strategies 命令
func newStrategiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "列出可用的抽取策略",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "可用的抽取策略:")
			for _, id := range redactor.DefaultRegistry().IDs() {
				line := fmt.Sprintf("  - %s", id)
				if id == redactor.DefaultStrategy {
					line += " (默认)"
				}
				fmt.Fprintln(out, line)
			}
		},
	}
}

// Execute 运行根命令，出错时以非零状态退出
func Execute(cmd *cobra.Command) {
	if err := cmd.Execute(); err != nil {
		if redactor.IsConfigError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
