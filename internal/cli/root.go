package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-privacy-redactor/internal/config"
	"github.com/nerdneilsfield/go-privacy-redactor/internal/logger"
	"github.com/nerdneilsfield/go-privacy-redactor/internal/redactor"
)

// rootOptions 命令行标志
type rootOptions struct {
	cfgFile      string
	debug        bool
	strategy     string
	enableLLM    bool
	llmBackend   string
	llmModel     string
	llmURL       string
	lexiconFile  string
	saveEntities bool

	// deps 测试时替换分词器等外部能力
	deps redactor.Deps
}

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	return newRootCommand(version, commit, buildDate, redactor.Deps{})
}

func newRootCommand(version, commit, buildDate string, deps redactor.Deps) *cobra.Command {
	o := &rootOptions{deps: deps}

	rootCmd := &cobra.Command{
		Use:   "redactor",
		Short: "中文临床文本隐私脱敏工具",
		Long: `识别中文病历、出院小结等临床文本中的个人与医疗隐私信息，并替换为占位符。

支持纯文本（.txt）与 Word 文档（.docx），Word 文档保留段落、表格与片段格式。

内置策略:
  - medical: 正则 + 分词（默认）
  - hybrid: 正则（含药品、检验值等领域规则）+ 分词
  - regex / domain / lexical / llm: 单一抽取方式

启用 --enable-llm 后 medical 与 hybrid 会追加大模型识别，服务不可用时自动跳过。`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	addGlobalFlags(rootCmd, o)

	rootCmd.AddCommand(newRedactCommand(o))
	rootCmd.AddCommand(newInspectCommand(o))
	rootCmd.AddCommand(newTextCommand(o))
	rootCmd.AddCommand(newStrategiesCommand())

	return rootCmd
}

// addGlobalFlags 添加全局标志
func addGlobalFlags(cmd *cobra.Command, o *rootOptions) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.cfgFile, "config", "", "配置文件路径 (默认 $HOME/.redactor.yaml 或 ./.redactor.yaml)")
	flags.BoolVar(&o.debug, "debug", false, "输出调试日志")
	flags.StringVarP(&o.strategy, "strategy", "s", redactor.DefaultStrategy, "抽取策略")
	flags.BoolVar(&o.enableLLM, "enable-llm", false, "启用大模型增强识别")
	flags.StringVar(&o.llmBackend, "llm-backend", "ollama", "大模型后端 (ollama, openai, compatible)")
	flags.StringVar(&o.llmModel, "llm-model", "qwen2:7b", "大模型名称")
	flags.StringVar(&o.llmURL, "llm-url", "", "大模型服务地址")
	flags.StringVar(&o.lexiconFile, "lexicon", "", "TOML 词表文件（额外术语与占位符）")
	flags.BoolVar(&o.saveEntities, "save-entities", false, "在输出文件旁保存实体 JSON")
}

// loadConfig 读取配置并用命令行标志覆盖
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(o.cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if flags.Changed("strategy") {
		cfg.Strategy = o.strategy
	}
	if flags.Changed("enable-llm") {
		cfg.EnableLLM = o.enableLLM
	}
	if flags.Changed("llm-backend") {
		cfg.LLM.Backend = o.llmBackend
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = o.llmModel
	}
	if flags.Changed("llm-url") {
		cfg.LLM.URL = o.llmURL
	}
	if flags.Changed("lexicon") {
		cfg.LexiconFile = o.lexiconFile
	}
	if flags.Changed("save-entities") {
		cfg.SaveEntities = o.saveEntities
	}

	return cfg, cfg.Validate()
}

// setup 加载配置、日志与脱敏器；返回的 logger 由调用方 Sync
func (o *rootOptions) setup(cmd *cobra.Command) (*redactor.Redactor, *config.Config, *zap.Logger, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}

	log := logger.New(logger.Options{
		Debug:      cfg.Debug,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})

	var lexicon *config.Lexicon
	if cfg.LexiconFile != "" {
		lexicon, err = config.LoadLexicon(cfg.LexiconFile)
		if err != nil {
			_ = log.Sync()
			return nil, nil, nil, err
		}
		log.Debug("lexicon loaded",
			zap.String("path", cfg.LexiconFile),
			zap.Int("terms", len(lexicon.Vocabulary)))
	}

	deps := o.deps
	deps.Logger = log
	r, err := redactor.New(cfg.RedactorOptions(lexicon), nil, deps)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}
	return r, cfg, log, nil
}
