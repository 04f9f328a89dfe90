package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/adampisula/musicdl-server/config"
	"github.com/adampisula/musicdl-server/db"
	"github.com/adampisula/musicdl-server/downloader"
	"github.com/adampisula/musicdl-server/storage"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check connectivity to every external dependency",
	Long:  `Verifies that yt-dlp is on the PATH and that MySQL, MinIO and Redis are reachable with the current configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		ytdlp := downloader.New(cfg.YtDlpPath, cfg.TempPath)
		report("yt-dlp executable", boolToErr(ytdlp.IsAvailable(), "not found in PATH"))

		if err := db.ConnectGormDB(cfg); err != nil {
			report("mysql", err)
		} else {
			report("mysql", nil)
			_ = db.CloseGormDB()
		}

		if store, err := storage.NewMinioStore(cfg); err != nil {
			report("minio", err)
		} else {
			report("minio", store.Ping(ctx))
		}

		if cfg.RedisHost == "" {
			fmt.Println("redis: disabled (REDIS_HOST not set)")
		} else if err := db.ConnectRedis(cfg); err != nil {
			report("redis", err)
		} else {
			report("redis", nil)
			_ = db.CloseRedis()
		}
	},
}

func report(name string, err error) {
	if err != nil {
		fmt.Printf("%s: FAIL (%v)\n", name, err)
		return
	}
	fmt.Printf("%s: OK\n", name)
}

func boolToErr(ok bool, message string) error {
	if ok {
		return nil
	}
	return fmt.Errorf("%s", message)
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
