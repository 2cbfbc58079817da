// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

const summarySystemPrompt = `You are a research assistant. Summarize the paper below in three to five sentences for a materials science researcher. State the problem, the approach, and the key findings. Do not repeat the title.`

const insightSystemPrompt = `You are a research analyst. Given a list of recent papers, describe the emerging themes, notable methods, and directions the field appears to be moving in. Be specific and cite paper numbers where relevant. Answer in short paragraphs.`

const compareSystemPrompt = `You are a research analyst. Compare the papers below: their problems, methods, datasets, and conclusions. Point out agreements, contradictions, and complementary results. Answer with one short section per aspect.`
