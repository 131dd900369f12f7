package internal

// DoneChan is closed once a background loop has fully stopped.
type DoneChan chan struct{}

// DoneFunc signals a background loop to stop and returns its DoneChan.
type DoneFunc func() DoneChan
