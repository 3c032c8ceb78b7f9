package pkg

// ModuleName tags log lines emitted by the agents service.
const ModuleName = "agents"
