package models

import "fmt"

var InvalidCloseErr = fmt.Errorf("close price must be positive")
var EmptySeriesErr = fmt.Errorf("series is empty")
