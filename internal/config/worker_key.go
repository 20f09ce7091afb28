package config

type WorkerKeyStruct struct {
	PersistAnswersQueue string
	PersistScoresQueue  string
	AnalyzeQueue        string
}

var WorkerKey = &WorkerKeyStruct{
	PersistAnswersQueue: "persist_answers_queue",
	PersistScoresQueue:  "persist_scores_queue",
	AnalyzeQueue:        "integrity_analyze_queue",
}
