package common

import "errors"

var (
	ErrorInvalidValue  = errors.New("invalid value")
	ErrorInvalidConfig = errors.New("invalid config")
	ErrorTrainingData  = errors.New("invalid training data")
	ErrorNotTrained    = errors.New("model is not trained")
)
