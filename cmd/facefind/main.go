// Command facefind trains the face classifier from annotated photographs and
// runs the skin-colour face detector over a directory of images.
//
//	facefind train  -truth ImageData.txt -images faces/ -model model.json
//	facefind detect -images photos/ -model model.json -output out/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-facedetect/config"

	// Register the extra decoders accepted by dataset.ListImages.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <train|detect> [flags]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "run '%s <command> -h' for the flags of a command\n", os.Args[0])
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var run func(args []string, log *logrus.Logger) error
	switch os.Args[1] {
	case "train":
		run = runTrain
	case "detect":
		run = runDetect
	case "-h", "-help", "--help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(os.Args[2:], log); err != nil {
		log.WithError(err).Fatal(os.Args[1] + " failed")
	}
}

// commonFlags are shared by every sub-command.
type commonFlags struct {
	configPath string
	verbose    bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "YAML or JSON pipeline configuration (defaults when empty)")
	fs.BoolVar(&c.verbose, "v", false, "Enable debug logging")
}

// load applies the logging level and returns the pipeline configuration.
func (c *commonFlags) load(log *logrus.Logger) (config.Config, error) {
	if c.verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if c.configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	log.WithField("path", c.configPath).Info("loaded configuration")
	return cfg, nil
}
