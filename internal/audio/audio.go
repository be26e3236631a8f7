package audio

import (
	"bytes"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

var (
	speakerOnce      sync.Once
	speakerReady     bool
	backgroundVolume *effects.Volume
	backgroundMutex  sync.Mutex
	quiet            bool
	verbose          bool
	logFunc          func(string, ...interface{})
)

// Init configures the audio package
func Init(quietMode, verboseMode bool, logger func(string, ...interface{})) {
	quiet = quietMode
	verbose = verboseMode
	logFunc = logger
}

func log(format string, args ...interface{}) {
	if logFunc != nil && verbose {
		logFunc(format, args...)
	}
}

func ensureSpeakerInitialized(format beep.Format) {
	speakerOnce.Do(func() {
		log("Setting up audio...")
		speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
		speakerReady = true
	})
}

// DecodeSound decodes WAV sound data into a streamer
func DecodeSound(soundData []byte) (beep.StreamSeekCloser, beep.Format, error) {
	if len(soundData) == 0 {
		log("Couldn't play sound (no data)")
		return nil, beep.Format{}, nil
	}

	streamer, format, err := wav.Decode(bytes.NewReader(soundData))
	if err != nil {
		log("Sound file couldn't be decoded: %v", err)
		return nil, beep.Format{}, err
	}

	return streamer, format, nil
}

// Play plays a sound synchronously (blocks until complete)
func Play(soundData []byte) {
	if quiet {
		return
	}

	streamer, format, err := DecodeSound(soundData)
	if err != nil || streamer == nil {
		return
	}
	defer streamer.Close()

	ensureSpeakerInitialized(format)

	done := make(chan bool)
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		done <- true
	})))

	log("Playing sound...")
	<-done
	log("Sound finished")
}

// StopAll stops all currently playing sounds
func StopAll() {
	if !speakerReady {
		return
	}
	speaker.Clear()
}

// PlayAsync plays a sound asynchronously at the specified volume (dB)
func PlayAsync(soundData []byte, volumeDB float64) {
	PlayAsyncLoop(soundData, volumeDB, false)
}

// PlayAsyncLoop plays a sound asynchronously, optionally looping.
// The looping form backs the download progress cue, stopped via StopAll
// once the transfer completes.
func PlayAsyncLoop(soundData []byte, volumeDB float64, loop bool) {
	if quiet {
		return
	}

	streamer, format, err := DecodeSound(soundData)
	if err != nil || streamer == nil {
		return
	}

	ensureSpeakerInitialized(format)

	var finalStreamer beep.Streamer = streamer
	if loop {
		finalStreamer = beep.Loop(-1, streamer)
	}

	backgroundMutex.Lock()
	backgroundVolume = &effects.Volume{
		Streamer: finalStreamer,
		Base:     2,
		Volume:   volumeDB,
		Silent:   false,
	}
	backgroundMutex.Unlock()

	speaker.Play(beep.Seq(backgroundVolume, beep.Callback(func() {
		streamer.Close()
		backgroundMutex.Lock()
		backgroundVolume = nil
		backgroundMutex.Unlock()
	})))

	if loop {
		log("Started looping background sound...")
	} else {
		log("Started background sound...")
	}
}
