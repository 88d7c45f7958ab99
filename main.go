package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/BrugadaSyndrome/bslogger"

	"FractalAnimator/coordinator"
	"FractalAnimator/misc"
	"FractalAnimator/worker"
)

func main() {
	var localFile, coordinatorFile, workerFile string
	flag.StringVar(&localFile, "local", "", "Settings file of a run rendered in this process")
	flag.StringVar(&coordinatorFile, "coordinator", "", "Settings file of a run handed out to workers")
	flag.StringVar(&workerFile, "worker", "", "Settings file of a worker")
	flag.Parse()

	logger := bslogger.NewLogger("Main", bslogger.Normal, nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case localFile != "":
		runCoordinator(ctx, localFile, true, logger)
	case coordinatorFile != "":
		runCoordinator(ctx, coordinatorFile, false, logger)
	case workerFile != "":
		settings, err := worker.LoadSettings(workerFile)
		misc.CheckError(err, logger, misc.Fatal)
		logger.Debug(settings.String())
		misc.CheckError(worker.NewWorker(settings).Run(ctx), logger, misc.Error)
	default:
		logger.Fatal("Please specify one of -local, -coordinator or -worker")
	}
}

func runCoordinator(ctx context.Context, settingsFile string, local bool, logger bslogger.Logger) {
	settings, err := coordinator.LoadSettings(settingsFile)
	misc.CheckError(err, logger, misc.Fatal)

	c, err := coordinator.NewCoordinator(settings)
	misc.CheckError(err, logger, misc.Fatal)
	defer c.Close()

	if local {
		_, err = c.RunLocal(ctx)
	} else {
		_, err = c.Serve(ctx)
	}
	misc.CheckError(err, logger, misc.Error)
}
