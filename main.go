package main

import (
	"flag"
	"log"

	"github.com/jonboulle/clockwork"
)

// pinixie -config={config file}

func main() {
	configFile := flag.String("config", "/etc/default/pinixie/pinixie.conf", "config file path")
	flag.Parse()

	// read config information
	settings := initSettings(*configFile)

	logCloser, err := setupLogging(settings, settings.GetBool(sConsoleLog))
	if err != nil {
		log.Fatalf("could not set up logging: %s", err.Error())
	}
	defer logCloser.Close()

	if settings.GetBool(sDebugDump) {
		settings.Dump()
	}

	rt := initRuntime(clockwork.NewRealClock(), settings)

	if err := rt.tubes.open(); err != nil {
		log.Fatalf("tube driver: %s", err.Error())
	}
	defer rt.tubes.close()

	if err := rt.hv.open(); err != nil {
		log.Fatalf("hv converter: %s", err.Error())
	}
	defer rt.hv.close()

	rt.hv.configure(loadHVConfig(rt))

	// both buttons held through power-on drops into trim mode before
	// anything else runs
	runTrimMode(rt)

	startClock(rt)
	startTicker(rt)
	startWatchButtons(rt)
	startLamps(rt)
	startConfigService(rt)

	wg.Wait()
}
