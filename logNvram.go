package main

import "errors"

// logNvram keeps the tuning block in memory
type logNvram struct {
	cfg      hvConfig
	hasCfg   bool
	saves    int
	failLoad bool
	failSave bool
}

func (ln *logNvram) load() (hvConfig, error) {
	if ln.failLoad {
		return hvConfig{}, errors.New("nvram read failed")
	}
	if !ln.hasCfg {
		// first run, nothing stored yet
		return defaultHVConfig(), nil
	}
	return ln.cfg, nil
}

func (ln *logNvram) save(cfg hvConfig) error {
	if ln.failSave {
		return errors.New("nvram write failed")
	}
	ln.cfg = cfg
	ln.hasCfg = true
	ln.saves++
	return nil
}
