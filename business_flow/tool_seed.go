package businessflow

import "github.com/aetherinc/aether-waitlist/utils"

// StarterCatalog is the built-in set of tools loaded by the seed command
func StarterCatalog() []ToolImportRow {
	return []ToolImportRow{
		{
			Name:        "Ollama",
			Category:    "Local Inference",
			Type:        []string{"LLM", "Runtime"},
			License:     "MIT",
			Description: "Run open-weight language models locally behind a simple HTTP API.",
			URL:         "https://ollama.com",
			Pricing:     utils.ToPtr("Free"),
			IsActive:    true,
		},
		{
			Name:        "LangChain",
			Category:    "Frameworks",
			Type:        []string{"LLM", "Agents"},
			License:     "MIT",
			Description: "Framework for composing language model calls, tools and retrieval into applications.",
			URL:         "https://www.langchain.com",
			Pricing:     utils.ToPtr("Free"),
			IsActive:    true,
		},
		{
			Name:        "Hugging Face Transformers",
			Category:    "Libraries",
			Type:        []string{"NLP", "Vision", "Audio"},
			License:     "Apache-2.0",
			Description: "Pretrained models for text, vision and audio with a unified Python API.",
			URL:         "https://huggingface.co/docs/transformers",
			Pricing:     utils.ToPtr("Free"),
			IsActive:    true,
		},
		{
			Name:        "OpenCV",
			Category:    "Computer Vision",
			Type:        []string{"Vision"},
			License:     "Apache-2.0",
			Description: "Computer vision library for image processing, detection and tracking.",
			URL:         "https://opencv.org",
			Pricing:     utils.ToPtr("Free"),
			IsActive:    true,
		},
		{
			Name:        "YOLO",
			Category:    "Computer Vision",
			Type:        []string{"Vision", "Detection"},
			License:     "AGPL-3.0",
			Description: "Real-time object detection and segmentation models.",
			URL:         "https://docs.ultralytics.com",
			Pricing:     utils.ToPtr("Free / Enterprise"),
			IsActive:    true,
		},
		{
			Name:        "Whisper",
			Category:    "Speech",
			Type:        []string{"Audio", "Transcription"},
			License:     "MIT",
			Description: "General-purpose speech recognition model with multilingual transcription.",
			URL:         "https://github.com/openai/whisper",
			Pricing:     utils.ToPtr("Free"),
			IsActive:    true,
		},
		{
			Name:        "Qdrant",
			Category:    "Vector Databases",
			Type:        []string{"Search", "Embeddings"},
			License:     "Apache-2.0",
			Description: "Vector similarity search engine for retrieval-augmented generation.",
			URL:         "https://qdrant.tech",
			Pricing:     utils.ToPtr("Free / Cloud"),
			IsActive:    true,
		},
		{
			Name:        "Stable Diffusion",
			Category:    "Image Generation",
			Type:        []string{"Vision", "Generative"},
			License:     "CreativeML Open RAIL-M",
			Description: "Latent diffusion model for text-to-image generation.",
			URL:         "https://stability.ai",
			Pricing:     utils.ToPtr("Free"),
			IsActive:    true,
		},
	}
}
