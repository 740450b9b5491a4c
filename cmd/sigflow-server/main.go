// sigflow-server 是请求观测服务的入口。
//
// 服务为每个入站 HTTP 请求分配关联标识，将请求生命周期的日志、
// 指标与 Span 写入 ClickHouse 的三张独立表，并暴露两个观测出口：
//
//	GET /metrics            Prometheus 拉取端点
//	GET /trace/{trace_id}   按关联标识聚合三类信号
//
// 用法:
//
//	sigflow-server [--config <路径>]
//
// 全局选项:
//
//	-c, --config   配置文件路径（YAML/JSON），缺省使用内置默认值
//
// 配置示例 (YAML):
//
//	service:
//	  name: sigflow
//	server:
//	  addr: ":8000"
//	clickhouse:
//	  addr: ["localhost:9000"]
//	  database: default
//	log:
//	  level: info
//	  format: json
//
// 运行期修改配置文件中的 log.level 可热加载日志级别，无需重启。
//
// 退出码:
//
//	0: 正常退出（含信号触发的优雅关闭）
//	1: 启动或运行失败（存储不可达、端口占用等）
//	2: 参数错误
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/sigflow/internal/app"
)

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "sigflow-server",
		Usage:   "请求观测服务：关联标识 + 日志/指标/Span 三表写入",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "配置文件路径 (YAML/JSON)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return serve(ctx, cmd.String("config"))
		},
	}
}

// serve 加载配置、组装并运行服务，阻塞直到终止。
func serve(ctx context.Context, configPath string) error {
	cfg, source, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, source)
	if err != nil {
		return err
	}

	// 信号处理由运行器内部完成：SIGINT/SIGTERM 等触发优雅关闭
	return a.Run(ctx)
}

func run() int {
	cliApp := createApp()

	if err := cliApp.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}
