package log

// Global vars related to the logger package
var (
	Global *SubLogger

	Engine       *SubLogger
	Execution    *SubLogger
	PortfolioMgr *SubLogger
	DataMgr      *SubLogger
	StrategyMgr  *SubLogger
	Report       *SubLogger
	Store        *SubLogger
	ConfigMgr    *SubLogger
)
