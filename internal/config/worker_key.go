package config

type WorkerKeyStruct struct {
	ExtractionQueue string
}

var WorkerKey = &WorkerKeyStruct{
	ExtractionQueue: "extraction_queue",
}
